package analysis

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Pair is a naive buy-low/sell-high suggestion between the cheapest and the
// most expensive group.
type Pair struct {
	Buy          Group           `json:"buy"`
	Sell         Group           `json:"sell"`
	ShippingPct  decimal.Decimal `json:"assumed_shipping_pct"`
	VATPct       decimal.Decimal `json:"assumed_vat_pct"`
	BuyCost      decimal.Decimal `json:"buy_cost"`
	SellNet      decimal.Decimal `json:"sell_net"`
	GrossGapPct  decimal.Decimal `json:"gross_gap_pct"`
	NetMarginPct decimal.Decimal `json:"est_net_margin_pct"`
}

// SelectPair takes groups sorted ascending by median and pairs the first (buy)
// with the last (sell). Fewer than two groups is not an error and returns nil.
func SelectPair(groups []Group, shippingPct, vatPct decimal.Decimal) (*Pair, error) {
	if len(groups) < 2 {
		return nil, nil
	}

	buy := groups[0]
	sell := groups[len(groups)-1]
	if !buy.Median.IsPositive() {
		return nil, &InvalidMetricError{Metric: "gross gap", Denominator: buy.Median, Subject: buy.Key(0)}
	}

	buyCost := buy.Median.Mul(one.Add(shippingPct.Div(hundred)))
	sellNet := sell.Median.Mul(one.Sub(vatPct.Div(hundred)))
	if !buyCost.IsPositive() {
		return nil, &InvalidMetricError{Metric: "net margin", Denominator: buyCost, Subject: buy.Key(0)}
	}

	return &Pair{
		Buy:          buy,
		Sell:         sell,
		ShippingPct:  shippingPct,
		VATPct:       vatPct,
		BuyCost:      buyCost,
		SellNet:      sellNet,
		GrossGapPct:  GapPct(buy.Median, sell.Median),
		NetMarginPct: GapPct(buyCost, sellNet),
	}, nil
}

// GapPct returns (high/low - 1) * 100. The caller guarantees low is positive.
func GapPct(low, high decimal.Decimal) decimal.Decimal {
	return high.Div(low).Sub(one).Mul(hundred)
}

// Rounded returns a copy with every monetary and percentage figure rounded to 2 places.
func (p Pair) Rounded() Pair {
	p.Buy.Median = p.Buy.Median.Round(2)
	p.Sell.Median = p.Sell.Median.Round(2)
	p.BuyCost = p.BuyCost.Round(2)
	p.SellNet = p.SellNet.Round(2)
	p.GrossGapPct = p.GrossGapPct.Round(2)
	p.NetMarginPct = p.NetMarginPct.Round(2)
	return p
}
