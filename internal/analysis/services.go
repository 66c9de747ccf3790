package analysis

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/dataset"
	"arbitrage-finder/internal/fx"
)

// ServiceKeys names the key parts of service groups.
var ServiceKeys = []string{"country", "seniority"}

// ServiceAnalysisResult is the outcome of a service rate query.
type ServiceAnalysisResult struct {
	RunID             string        `json:"run_id"`
	Params            ServiceParams `json:"params"`
	MatchedRows       int           `json:"matched_rows"`
	SkippedRows       int           `json:"skipped_rows"`
	MissingCurrencies []string      `json:"missing_currencies,omitempty"`
	TotalGroups       int           `json:"total_groups"`
	// ByCountry holds the top-N groups, ascending by median USD hourly rate.
	ByCountry []Group `json:"by_country"`
	Summary   string  `json:"summary"`
}

// AnalyzeServices filters quotes by service name, converts hourly rates to USD and
// groups them by country and seniority.
func AnalyzeServices(ds *dataset.Dataset, params ServiceParams, opts Options) (*ServiceAnalysisResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("service analysis: dataset not loaded")
	}
	res := &ServiceAnalysisResult{
		RunID:     uuid.NewString(),
		Params:    params,
		ByCountry: []Group{},
	}

	matched := Filter(ds.Services, params.Query,
		func(q dataset.ServiceQuote) string { return q.ServiceName },
	)
	res.MatchedRows = len(matched)
	if len(matched) == 0 {
		res.Summary = NoMatchSummary("service", params.Query)
		return res, nil
	}

	rates, err := fx.NewRateTable(ds.FX)
	if err != nil {
		return nil, err
	}
	conv := newConversion(opts.MissingRates)
	priced, err := mapRows(matched, conv, priceService(rates))
	if err != nil {
		return nil, fmt.Errorf("convert service rates: %w", err)
	}
	res.SkippedRows = conv.skipped
	res.MissingCurrencies = conv.missingCurrencies()

	groups := Aggregate(priced,
		func(q PricedService) []string { return []string{q.Country, q.Seniority} },
		func(q PricedService) decimal.Decimal { return q.RateUSDPerHour },
	)
	ranked := Rank(groups, ByMedian, true)
	res.TotalGroups = len(ranked)
	res.Summary = SummarizeServices(ranked)
	res.ByCountry = Top(ranked, params.TopN)
	return res, nil
}
