package domain

// RiskLevel is the backend's categorical assessment of executing an
// opportunity at scale.
type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskExtreme RiskLevel = "EXTREME"
)

// SlippageTiers are the notional amounts (USDT) the backend reports
// per-tier slippage for.
var SlippageTiers = []string{"100", "500", "1000", "5000"}

// ExchangeDepth describes order-book depth quality on one side of a route.
type ExchangeDepth struct {
	Exchange       string             `json:"exchange"`
	LiquidityScore float64            `json:"liquidity_score"` // 0..10
	DepthUSDT      float64            `json:"depth_usdt"`
	OptimalSize    float64            `json:"optimal_size"`
	Slippage       map[string]float64 `json:"slippage"` // tier -> pct
}

// RiskSummary is the backend's combined recommendation for a route.
type RiskSummary struct {
	RiskLevel         RiskLevel `json:"risk_level"`
	TotalSlippagePct  float64   `json:"total_slippage_pct"`
	OptimalAmountUSDT float64   `json:"optimal_amount_usdt"`
	RiskFactors       []string  `json:"risk_factors"`
}

// LiquidityAnalysis is the depth and slippage breakdown for one
// opportunity. Fetched lazily and at most once per cache entry.
type LiquidityAnalysis struct {
	Buy     *ExchangeDepth `json:"buy"`
	Sell    *ExchangeDepth `json:"sell"`
	Summary *RiskSummary   `json:"summary"`
}
