package domain

import "time"

// TradeRequest is a one-shot manual trade submission. Not idempotent: the
// backend may duplicate a trade if the caller retries after a timeout, so
// no retry is ever performed.
type TradeRequest struct {
	Pair         string      `json:"pair"`
	BuyExchange  string      `json:"buy_exchange"`
	SellExchange string      `json:"sell_exchange"`
	AmountUSDT   float64     `json:"amount_usdt"`
	Mode         TradingMode `json:"mode"`
}

// TradeResult is the outcome of an executed trade. Either order ID may be
// empty, signaling partial execution.
type TradeResult struct {
	Success      bool    `json:"success"`
	ActualProfit float64 `json:"actual_profit"`
	BuyOrderID   string  `json:"buy_order_id"`
	SellOrderID  string  `json:"sell_order_id"`
	Error        string  `json:"error,omitempty"`
}

// SimulationStats is the backend's aggregate simulation performance.
type SimulationStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalProfit   float64 `json:"total_profit"`
	AverageProfit float64 `json:"average_profit"`
}

// ExchangeInfo is one entry of the backend's exchange connectivity report.
type ExchangeInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Connected   bool   `json:"connected"`
}

// TradeRecord is a locally journaled executed trade.
type TradeRecord struct {
	ID           int64
	Pair         string
	BuyExchange  string
	SellExchange string
	AmountUSDT   float64
	Mode         TradingMode
	Profit       float64
	BuyOrderID   string
	SellOrderID  string
	CreatedAt    time.Time
}

// StatsSnapshot is a locally journaled point-in-time copy of the
// simulation statistics.
type StatsSnapshot struct {
	ID            int64
	TotalTrades   int
	WinRate       float64
	TotalProfit   float64
	AverageProfit float64
	CreatedAt     time.Time
}
