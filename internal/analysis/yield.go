package analysis

import "github.com/shopspring/decimal"

var monthsPerYear = decimal.NewFromInt(12)

// GrossYield returns annual rent as a percentage of price: rent*12/price*100.
func GrossYield(monthlyRent, price decimal.Decimal) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Decimal{}, &InvalidMetricError{Metric: "gross yield", Denominator: price}
	}
	return monthlyRent.Mul(monthsPerYear).Div(price).Mul(hundred), nil
}
