package domain

import "context"

// BackendAPI defines the interface to the arbitrage backend. All calls are
// plain request/response; failures are returned, never retried here.
type BackendAPI interface {
	// Spread feed
	GetLiveSpreads(ctx context.Context) ([]Opportunity, error)
	GetTestSpreads(ctx context.Context) ([]Opportunity, error)

	// Liquidity
	GetLiquidity(ctx context.Context, key OpportunityKey) (*LiquidityAnalysis, error)

	// Trading
	GetTradingStatus(ctx context.Context) (*TradingStatus, error)
	ExecuteTrade(ctx context.Context, req *TradeRequest) (*TradeResult, error)
	GetSimulationStats(ctx context.Context) (*SimulationStats, error)
	GetExchanges(ctx context.Context) ([]ExchangeInfo, error)

	// Auto-trader
	GetAutoTraderStatus(ctx context.Context) (*AutoTraderStatus, error)
	StartAutoTrader(ctx context.Context) error
	StopAutoTrader(ctx context.Context) error
	PauseAutoTrader(ctx context.Context) error
	ResumeAutoTrader(ctx context.Context) error
	UpdateRiskSettings(ctx context.Context, settings RiskSettings) error

	// Display settings
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateMinThreshold(ctx context.Context, threshold float64) error
	UpdateMaxThreshold(ctx context.Context, threshold float64) error
	AddToBlacklist(ctx context.Context, coin string) ([]string, error)
	RemoveFromBlacklist(ctx context.Context, coin string) ([]string, error)

	// Credentials. The backend never echoes secrets back; only configured
	// exchange names are readable.
	ListAPIKeyExchanges(ctx context.Context) ([]string, error)
	SaveAPIKeys(ctx context.Context, creds *APICredentials) error
	DeleteAPIKeys(ctx context.Context, exchange string) error
}

// TradeJournal defines local storage for executed trades and simulation
// stat snapshots.
type TradeJournal interface {
	SaveTrade(ctx context.Context, record *TradeRecord) error
	ListTrades(ctx context.Context, limit int) ([]*TradeRecord, error)
	SaveStatsSnapshot(ctx context.Context, snap *StatsSnapshot) error
	ListStatsSnapshots(ctx context.Context, limit int) ([]*StatsSnapshot, error)
}
