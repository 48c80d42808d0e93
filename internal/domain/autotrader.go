package domain

// TraderState is the client-observed state of the remote auto-trader.
type TraderState string

const (
	TraderIdle    TraderState = "idle"
	TraderRunning TraderState = "running"
	TraderPaused  TraderState = "paused"
	TraderError   TraderState = "error"
)

// RiskSettings is the auto-trader's risk policy. Edits are staged locally
// and committed as a single replace-all update.
type RiskSettings struct {
	MinSpreadPct     float64 `json:"min_spread_pct"`
	MaxTradeSizeUSDT float64 `json:"max_trade_size_usdt"`
	MaxTradesPerHour int     `json:"max_trades_per_hour"`
	MaxDailyLossUSDT float64 `json:"max_daily_loss_usdt"`
}

// RiskStats is the auto-trader's rolling daily usage.
type RiskStats struct {
	DailyProfit float64 `json:"daily_profit"`
	TradesToday int     `json:"trades_today"`
}

// AutoTraderStatus is the server-owned auto-trader state. The local copy is
// a mirror: it is refreshed by polling and overwritten unconditionally,
// never patched.
type AutoTraderStatus struct {
	State         TraderState  `json:"state"`
	SessionTrades int          `json:"session_trades"`
	SessionProfit float64      `json:"session_profit"`
	RiskStats     RiskStats    `json:"risk_stats"`
	RiskSettings  RiskSettings `json:"risk_settings"`
}
