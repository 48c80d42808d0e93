package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/vitos/arb_dashboard/internal/domain"
	"go.uber.org/zap"
)

// StatusMonitor mirrors the slow-moving backend state: global trading
// status, simulation statistics and exchange connectivity. Each tick
// overwrites its mirror unconditionally; results are "latest known", never
// deltas, because poll completions may arrive out of order.
type StatusMonitor struct {
	api     domain.BackendAPI
	journal domain.TradeJournal // optional, receives stat snapshots
	logger  *zap.Logger

	mu        sync.Mutex
	trading   *domain.TradingStatus
	stats     *domain.SimulationStats
	exchanges []domain.ExchangeInfo
}

func NewStatusMonitor(api domain.BackendAPI, journal domain.TradeJournal, logger *zap.Logger) *StatusMonitor {
	return &StatusMonitor{
		api:     api,
		journal: journal,
		logger:  logger,
	}
}

// TickTradingStatus refreshes the use_testnet mirror.
func (m *StatusMonitor) TickTradingStatus(ctx context.Context) {
	status, err := m.api.GetTradingStatus(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		m.logger.Warn("Trading status poll failed", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.trading = status
	m.mu.Unlock()
}

// TickStats refreshes simulation statistics and journals a snapshot.
func (m *StatusMonitor) TickStats(ctx context.Context) {
	stats, err := m.api.GetSimulationStats(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		m.logger.Warn("Simulation stats poll failed", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.stats = stats
	m.mu.Unlock()

	if m.journal != nil {
		snap := &domain.StatsSnapshot{
			TotalTrades:   stats.TotalTrades,
			WinRate:       stats.WinRate,
			TotalProfit:   stats.TotalProfit,
			AverageProfit: stats.AverageProfit,
			CreatedAt:     time.Now(),
		}
		if err := m.journal.SaveStatsSnapshot(ctx, snap); err != nil {
			m.logger.Warn("Failed to journal stats snapshot", zap.Error(err))
		}
	}
}

// TickExchanges refreshes the exchange connectivity mirror.
func (m *StatusMonitor) TickExchanges(ctx context.Context) {
	exchanges, err := m.api.GetExchanges(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		m.logger.Warn("Exchange connectivity poll failed", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.exchanges = exchanges
	m.mu.Unlock()
}

// TradingStatus returns the mirrored trading status. ok is false before
// the first successful poll.
func (m *StatusMonitor) TradingStatus() (domain.TradingStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trading == nil {
		return domain.TradingStatus{}, false
	}
	return *m.trading, true
}

// AllowedMode downgrades a live selection to testnet when the backend
// enforces the testnet policy. Other modes pass through.
func (m *StatusMonitor) AllowedMode(mode domain.TradingMode) domain.TradingMode {
	status, ok := m.TradingStatus()
	if ok && status.UseTestnet && mode == domain.ModeLive {
		return domain.ModeTestnet
	}
	return mode
}

func (m *StatusMonitor) SimulationStats() (domain.SimulationStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		return domain.SimulationStats{}, false
	}
	return *m.stats, true
}

// StatsHistory returns the latest journaled stats snapshots, newest first.
func (m *StatusMonitor) StatsHistory(ctx context.Context, limit int) ([]*domain.StatsSnapshot, error) {
	if m.journal == nil {
		return nil, nil
	}
	return m.journal.ListStatsSnapshots(ctx, limit)
}

func (m *StatusMonitor) Exchanges() []domain.ExchangeInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ExchangeInfo, len(m.exchanges))
	copy(out, m.exchanges)
	return out
}
