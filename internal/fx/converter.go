package fx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/dataset"
)

// ReferenceCurrency is the currency every amount is normalised to.
const ReferenceCurrency = "USD"

var (
	// ErrMissingRate matches any MissingRateError via errors.Is.
	ErrMissingRate = errors.New("fx: missing rate")
	// ErrDuplicateRate indicates a currency listed more than once in the rate table.
	ErrDuplicateRate = errors.New("fx: duplicate rate")
)

// MissingRateError is returned when a currency has no entry in the rate table.
type MissingRateError struct {
	Currency string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("missing FX rate for %s", e.Currency)
}

// Is reports whether target is ErrMissingRate.
func (e *MissingRateError) Is(target error) bool {
	return target == ErrMissingRate
}

// RateTable maps upper-cased currency codes to USD-per-unit rates. It is read-only after construction.
type RateTable struct {
	rates map[string]decimal.Decimal
}

// NewRateTable builds a table from loaded fx rows. Codes are matched case-insensitively and must be unique.
func NewRateTable(rows []dataset.FXRate) (*RateTable, error) {
	rates := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		code := normaliseCode(row.Currency)
		if code == "" {
			return nil, errors.New("fx: empty currency code")
		}
		if _, dup := rates[code]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRate, code)
		}
		rates[code] = row.USDPerUnit
	}
	return &RateTable{rates: rates}, nil
}

// Rate returns the USD-per-unit rate for currency.
func (t *RateTable) Rate(currency string) (decimal.Decimal, error) {
	if t == nil {
		return decimal.Decimal{}, &MissingRateError{Currency: currency}
	}
	rate, ok := t.rates[normaliseCode(currency)]
	if !ok {
		return decimal.Decimal{}, &MissingRateError{Currency: currency}
	}
	return rate, nil
}

// Convert returns amount expressed in the reference currency. No rounding is applied.
func (t *RateTable) Convert(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	rate, err := t.Rate(currency)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Mul(rate), nil
}

// Len reports the number of currencies in the table.
func (t *RateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rates)
}

func normaliseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
