package analysis

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/dataset"
	"arbitrage-finder/internal/fx"
)

// PricedProduct is a product with its price in the reference currency.
type PricedProduct struct {
	dataset.Product
	PriceUSD decimal.Decimal `json:"price_usd"`
}

// PricedService is a service quote with its hourly rate in the reference currency.
type PricedService struct {
	dataset.ServiceQuote
	RateUSDPerHour decimal.Decimal `json:"rate_usd_per_hour"`
}

// conversion tracks rows skipped under PolicySkip.
type conversion struct {
	policy  MissingRatePolicy
	skipped int
	missing map[string]struct{}
}

func newConversion(policy MissingRatePolicy) *conversion {
	return &conversion{policy: policy, missing: make(map[string]struct{})}
}

// handle returns true when err allows the row to be skipped, false when it must abort.
func (c *conversion) handle(err error) bool {
	if c.policy != PolicySkip {
		return false
	}
	var missing *fx.MissingRateError
	if errors.As(err, &missing) {
		c.missing[missing.Currency] = struct{}{}
		c.skipped++
		return true
	}
	if errors.Is(err, ErrInvalidMetric) {
		c.skipped++
		return true
	}
	return false
}

func (c *conversion) missingCurrencies() []string {
	out := make([]string, 0, len(c.missing))
	for code := range c.missing {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// mapRows applies fn to every record and returns a new slice; records are not modified.
func mapRows[T, U any](records []T, conv *conversion, fn func(T) (U, error)) ([]U, error) {
	out := make([]U, 0, len(records))
	for _, rec := range records {
		u, err := fn(rec)
		if err != nil {
			if conv.handle(err) {
				continue
			}
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func priceProduct(rates *fx.RateTable) func(dataset.Product) (PricedProduct, error) {
	return func(p dataset.Product) (PricedProduct, error) {
		usd, err := rates.Convert(p.PriceLocal, p.Currency)
		if err != nil {
			return PricedProduct{}, err
		}
		return PricedProduct{Product: p, PriceUSD: usd}, nil
	}
}

func priceService(rates *fx.RateTable) func(dataset.ServiceQuote) (PricedService, error) {
	return func(q dataset.ServiceQuote) (PricedService, error) {
		usd, err := rates.Convert(q.RateLocalPerHour, q.Currency)
		if err != nil {
			return PricedService{}, err
		}
		return PricedService{ServiceQuote: q, RateUSDPerHour: usd}, nil
	}
}
