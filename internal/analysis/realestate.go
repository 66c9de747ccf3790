package analysis

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/dataset"
	"arbitrage-finder/internal/fx"
)

// YieldRow is one property with USD figures and its gross yield.
type YieldRow struct {
	dataset.Property
	PriceUSDSqm     decimal.Decimal `json:"price_usd_sqm"`
	RentUSDSqmMonth decimal.Decimal `json:"rent_usd_sqm_m"`
	GrossYieldPct   decimal.Decimal `json:"gross_yield_pct"`
}

// RealEstateAnalysisResult is the outcome of a gross-yield ranking.
type RealEstateAnalysisResult struct {
	RunID             string           `json:"run_id"`
	Params            RealEstateParams `json:"params"`
	Rows              int              `json:"rows"`
	SkippedRows       int              `json:"skipped_rows"`
	MissingCurrencies []string         `json:"missing_currencies,omitempty"`
	TopYields         []YieldRow       `json:"top_yields"`
	WorstYields       []YieldRow       `json:"worst_yields"`
	Summary           string           `json:"summary"`
}

// ByYield is the ranking metric for yield rows.
func ByYield(r YieldRow) decimal.Decimal {
	return r.GrossYieldPct
}

// AnalyzeRealEstate converts every property to USD, computes its gross yield and
// ranks the rows twice, best first and worst first.
func AnalyzeRealEstate(ds *dataset.Dataset, params RealEstateParams, opts Options) (*RealEstateAnalysisResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("real estate analysis: dataset not loaded")
	}
	res := &RealEstateAnalysisResult{
		RunID:       uuid.NewString(),
		Params:      params,
		TopYields:   []YieldRow{},
		WorstYields: []YieldRow{},
	}

	rates, err := fx.NewRateTable(ds.FX)
	if err != nil {
		return nil, err
	}
	conv := newConversion(opts.MissingRates)
	rows, err := mapRows(ds.RealEstate, conv, func(p dataset.Property) (YieldRow, error) {
		price, err := rates.Convert(p.PricePerSqmLocal, p.Currency)
		if err != nil {
			return YieldRow{}, err
		}
		rent, err := rates.Convert(p.RentPerSqmLocalPerMonth, p.Currency)
		if err != nil {
			return YieldRow{}, err
		}
		gross, err := GrossYield(rent, price)
		if err != nil {
			if metricErr, ok := err.(*InvalidMetricError); ok {
				metricErr.Subject = p.City
			}
			return YieldRow{}, err
		}
		return YieldRow{Property: p, PriceUSDSqm: price, RentUSDSqmMonth: rent, GrossYieldPct: gross}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("compute yields: %w", err)
	}
	res.Rows = len(rows)
	res.SkippedRows = conv.skipped
	res.MissingCurrencies = conv.missingCurrencies()

	res.TopYields = Top(Rank(rows, ByYield, false), params.TopN)
	res.WorstYields = Top(Rank(rows, ByYield, true), params.TopN)
	res.Summary = SummarizeYields(res.TopYields, res.WorstYields)
	return res, nil
}
