package usecase

import (
	"context"
	"time"

	"github.com/vitos/arb_dashboard/internal/domain"
	"go.uber.org/zap"
)

// TradeExecutor submits one-shot manual trades. Submissions are not
// idempotent and are never retried. Mode gating is the caller's job: a
// live request is sent as-is even when the backend enforces testnet.
type TradeExecutor struct {
	api     domain.BackendAPI
	journal domain.TradeJournal // optional
	logger  *zap.Logger
}

func NewTradeExecutor(api domain.BackendAPI, journal domain.TradeJournal, logger *zap.Logger) *TradeExecutor {
	return &TradeExecutor{
		api:     api,
		journal: journal,
		logger:  logger,
	}
}

// Execute submits a trade for the opportunity and reports the outcome.
// A transport or server failure is returned as an error carrying the
// server detail when available. A completed-with-error trade comes back
// as a result with Success=false and the trade's own error text.
func (e *TradeExecutor) Execute(ctx context.Context, opp domain.Opportunity, amountUSDT float64, mode domain.TradingMode) (*domain.TradeResult, error) {
	req := &domain.TradeRequest{
		Pair:         opp.Pair,
		BuyExchange:  opp.BuyExchange,
		SellExchange: opp.SellExchange,
		AmountUSDT:   amountUSDT,
		Mode:         mode,
	}

	result, err := e.api.ExecuteTrade(ctx, req)
	if err != nil {
		e.logger.Warn("Trade execution failed",
			zap.String("pair", opp.Pair),
			zap.String("mode", string(mode)),
			zap.Error(err))
		return nil, err
	}

	e.logger.Info("Trade executed",
		zap.String("pair", opp.Pair),
		zap.String("mode", string(mode)),
		zap.Bool("success", result.Success),
		zap.Float64("profit", result.ActualProfit))

	if result.Success && e.journal != nil {
		record := &domain.TradeRecord{
			Pair:         opp.Pair,
			BuyExchange:  opp.BuyExchange,
			SellExchange: opp.SellExchange,
			AmountUSDT:   amountUSDT,
			Mode:         mode,
			Profit:       result.ActualProfit,
			BuyOrderID:   result.BuyOrderID,
			SellOrderID:  result.SellOrderID,
			CreatedAt:    time.Now(),
		}
		if err := e.journal.SaveTrade(ctx, record); err != nil {
			// Journaling is best effort; the trade already happened.
			e.logger.Warn("Failed to journal trade", zap.Error(err))
		}
	}

	return result, nil
}

// RecentTrades returns the latest journaled trades, newest first. Without a
// journal there is no history to show.
func (e *TradeExecutor) RecentTrades(ctx context.Context, limit int) ([]*domain.TradeRecord, error) {
	if e.journal == nil {
		return nil, nil
	}
	return e.journal.ListTrades(ctx, limit)
}
