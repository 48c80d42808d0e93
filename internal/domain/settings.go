package domain

// TradingMode selects the execution context for a trade.
type TradingMode string

const (
	ModeSimulation TradingMode = "simulation"
	ModeTestnet    TradingMode = "testnet"
	ModeLive       TradingMode = "live"
)

// TradingStatus is global server-owned trading configuration. Read-only to
// this client; use_testnet forbids selecting the live mode.
type TradingStatus struct {
	UseTestnet bool `json:"use_testnet"`
}

// Settings is the display filter configuration. min < max is expected but
// not enforced client-side.
type Settings struct {
	MinSpreadThreshold float64     `json:"min_spread_threshold"`
	MaxSpreadThreshold float64     `json:"max_spread_threshold"`
	BlacklistedCoins   []string    `json:"blacklisted_coins"`
	TradingMode        TradingMode `json:"trading_mode"`
}

// APICredentials is exchange credential material submitted to the backend.
// The secret is never echoed back and must never be logged.
type APICredentials struct {
	Exchange  string `json:"exchange"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}
