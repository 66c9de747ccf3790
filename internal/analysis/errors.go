package analysis

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidMetric matches any InvalidMetricError via errors.Is.
var ErrInvalidMetric = errors.New("analysis: invalid metric")

// InvalidMetricError reports a derived metric whose denominator is zero or negative.
type InvalidMetricError struct {
	Metric      string
	Denominator decimal.Decimal
	Subject     string
}

func (e *InvalidMetricError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("cannot compute %s for %s: denominator %s is not positive", e.Metric, e.Subject, e.Denominator.String())
	}
	return fmt.Sprintf("cannot compute %s: denominator %s is not positive", e.Metric, e.Denominator.String())
}

// Is reports whether target is ErrInvalidMetric.
func (e *InvalidMetricError) Is(target error) bool {
	return target == ErrInvalidMetric
}
