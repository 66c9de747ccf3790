package analysis

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/dataset"
	"arbitrage-finder/internal/fx"
)

// ProductKeys names the key parts of product groups.
var ProductKeys = []string{"country", "currency"}

// Options tune how an analysis treats bad rows.
type Options struct {
	MissingRates MissingRatePolicy
}

// ProductAnalysisResult is the outcome of a product arbitrage query.
type ProductAnalysisResult struct {
	RunID             string        `json:"run_id"`
	Params            ProductParams `json:"params"`
	MatchedRows       int           `json:"matched_rows"`
	SkippedRows       int           `json:"skipped_rows"`
	MissingCurrencies []string      `json:"missing_currencies,omitempty"`
	TotalGroups       int           `json:"total_groups"`
	// ByCountry holds the top-N groups, ascending by median USD price.
	ByCountry []Group `json:"by_country"`
	Pair      *Pair   `json:"pair,omitempty"`
	Summary   string  `json:"summary"`
}

// AnalyzeProducts filters products by item name or brand, converts prices to USD,
// groups them by country and currency and derives a buy/sell pair.
func AnalyzeProducts(ds *dataset.Dataset, params ProductParams, opts Options) (*ProductAnalysisResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("product analysis: dataset not loaded")
	}
	res := &ProductAnalysisResult{
		RunID:     uuid.NewString(),
		Params:    params,
		ByCountry: []Group{},
	}

	matched := Filter(ds.Products, params.Query,
		func(p dataset.Product) string { return p.ItemName },
		func(p dataset.Product) string { return p.Brand },
	)
	res.MatchedRows = len(matched)
	if len(matched) == 0 {
		res.Summary = NoMatchSummary("product", params.Query)
		return res, nil
	}

	rates, err := fx.NewRateTable(ds.FX)
	if err != nil {
		return nil, err
	}
	conv := newConversion(opts.MissingRates)
	priced, err := mapRows(matched, conv, priceProduct(rates))
	if err != nil {
		return nil, fmt.Errorf("convert product prices: %w", err)
	}
	res.SkippedRows = conv.skipped
	res.MissingCurrencies = conv.missingCurrencies()

	groups := Aggregate(priced,
		func(p PricedProduct) []string { return []string{p.Country, strings.ToUpper(p.Currency)} },
		func(p PricedProduct) decimal.Decimal { return p.PriceUSD },
	)
	ranked := Rank(groups, ByMedian, true)
	res.TotalGroups = len(ranked)

	pair, err := SelectPair(ranked, pct(params.ShippingPct), pct(params.VATPct))
	if err != nil {
		return nil, err
	}
	res.Pair = pair
	res.Summary = SummarizeProducts(ranked)
	res.ByCountry = Top(ranked, params.TopN)
	return res, nil
}
