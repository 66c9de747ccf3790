package analysis

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MissingRatePolicy decides what happens to a row whose currency has no FX rate.
type MissingRatePolicy string

const (
	// PolicyFail aborts the whole analysis on the first missing rate.
	PolicyFail MissingRatePolicy = "fail"
	// PolicySkip drops the offending rows and reports how many were skipped.
	PolicySkip MissingRatePolicy = "skip"
)

// ParsePolicy maps a config string onto a MissingRatePolicy. Empty means PolicyFail.
func ParsePolicy(s string) (MissingRatePolicy, error) {
	switch MissingRatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown missing rate policy %q", s)
	}
}

// ProductParams are the inputs of a product analysis.
type ProductParams struct {
	Query       string  `json:"query" validate:"max=200"`
	ShippingPct float64 `json:"shipping_pct" validate:"gte=0,lte=100"`
	VATPct      float64 `json:"vat_pct" validate:"gte=0,lte=100"`
	TopN        int     `json:"top_n" validate:"gte=2,lte=50"`
}

// ServiceParams are the inputs of a service analysis.
type ServiceParams struct {
	Query string `json:"query" validate:"max=200"`
	TopN  int    `json:"top_n" validate:"gte=2,lte=50"`
}

// RealEstateParams are the inputs of a real-estate yield analysis.
type RealEstateParams struct {
	TopN int `json:"top_n" validate:"gte=2,lte=50"`
}

var validate = newValidator()

// newValidator reports fields by their json names, e.g. "top_n".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks parameter bounds. The returned error is a validator.ValidationErrors
// when a field is out of range.
func Validate(params any) error {
	return validate.Struct(params)
}

func pct(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
