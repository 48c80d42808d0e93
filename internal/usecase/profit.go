package usecase

import "github.com/vitos/arb_dashboard/internal/domain"

// EstimateRealProfit computes risk-adjusted profit for trading amountUSDT
// on an opportunity. The reported profit_usdt is normalized to a $1000
// notional; total slippage eats into it proportionally to the amount.
// Without a liquidity analysis there is no estimate, only
// domain.ErrLiquidityUnavailable: absence of data is not zero impact.
func EstimateRealProfit(opp domain.Opportunity, analysis *domain.LiquidityAnalysis, amountUSDT float64) (float64, error) {
	if analysis == nil || analysis.Summary == nil {
		return 0, domain.ErrLiquidityUnavailable
	}

	grossProfit := opp.ProfitUSDT * (amountUSDT / 1000)
	slippageLoss := amountUSDT * analysis.Summary.TotalSlippagePct / 100
	return grossProfit - slippageLoss, nil
}

// TierSlippage aggregates per-tier slippage for display. The 0.5 weighting
// on the sell leg is a fixed display heuristic and is not part of
// EstimateRealProfit.
func TierSlippage(analysis *domain.LiquidityAnalysis, tier string) float64 {
	if analysis == nil {
		return 0
	}
	var buy, sell float64
	if analysis.Buy != nil {
		buy = analysis.Buy.Slippage[tier]
	}
	if analysis.Sell != nil {
		sell = analysis.Sell.Slippage[tier]
	}
	return buy + 0.5*sell
}
