package domain

// Opportunity is one cross-exchange price spread row as reported by the
// backend scanner. The collection is replaced wholesale on every poll;
// rows are never mutated in place.
type Opportunity struct {
	Pair         string   `json:"pair"`
	BuyExchange  string   `json:"buy_exchange"`
	SellExchange string   `json:"sell_exchange"`
	BuyPrice     float64  `json:"buy_price"`
	SellPrice    float64  `json:"sell_price"`
	SpreadPct    float64  `json:"spread_pct"`
	NetSpreadPct *float64 `json:"net_spread_pct,omitempty"`
	ProfitUSDT   float64  `json:"profit_usdt"`
	Timestamp    string   `json:"timestamp,omitempty"`
}

// OpportunityKey identifies an opportunity by its trading route. The key is
// not unique within a single poll: the scanner may report duplicates that
// differ only by position in the list.
type OpportunityKey struct {
	Pair         string
	BuyExchange  string
	SellExchange string
}

func (o Opportunity) Key() OpportunityKey {
	return OpportunityKey{
		Pair:         o.Pair,
		BuyExchange:  o.BuyExchange,
		SellExchange: o.SellExchange,
	}
}

// EffectiveSpread returns the fee-adjusted spread when the scanner provides
// one, otherwise the raw spread.
func (o Opportunity) EffectiveSpread() float64 {
	if o.NetSpreadPct != nil {
		return *o.NetSpreadPct
	}
	return o.SpreadPct
}
