package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NoMatchSummary is reported when a query matches no rows of kind.
func NoMatchSummary(kind, query string) string {
	return fmt.Sprintf("No %s rows matching %q.", kind, query)
}

// SummarizeProducts describes the cheapest and the richest group of an ascending ranking.
func SummarizeProducts(ranked []Group) string {
	switch len(ranked) {
	case 0:
		return "No matching countries."
	case 1:
		g := ranked[0]
		return fmt.Sprintf("Only %s has a median (~ $%s); no comparison available.", g.Key(0), g.Median.StringFixed(0))
	}
	best, worst := ranked[0], ranked[len(ranked)-1]
	return fmt.Sprintf("Cheapest median in %s ~ $%s vs highest in %s ~ $%s. Gross gap ≈ %s.",
		best.Key(0), best.Median.StringFixed(0),
		worst.Key(0), worst.Median.StringFixed(0),
		formatGap(best.Median, worst.Median))
}

// SummarizeServices is SummarizeProducts for hourly rates keyed by country and seniority.
func SummarizeServices(ranked []Group) string {
	switch len(ranked) {
	case 0:
		return "No matching countries."
	case 1:
		g := ranked[0]
		return fmt.Sprintf("Only %s (%s) has a median (~ $%s/h); no comparison available.", g.Key(0), g.Key(1), g.Median.StringFixed(0))
	}
	best, worst := ranked[0], ranked[len(ranked)-1]
	return fmt.Sprintf("Lowest median in %s (%s) ~ $%s/h vs highest in %s (%s) ~ $%s/h. Gap ≈ %s.",
		best.Key(0), best.Key(1), best.Median.StringFixed(0),
		worst.Key(0), worst.Key(1), worst.Median.StringFixed(0),
		formatGap(best.Median, worst.Median))
}

// SummarizeYields names the best and the lowest gross yield.
func SummarizeYields(best, worst []YieldRow) string {
	if len(best) == 0 || len(worst) == 0 {
		return "No real estate rows."
	}
	b, w := best[0], worst[0]
	if len(best) == 1 {
		return fmt.Sprintf("Only %s (%s) has a gross yield (~ %s%%); no comparison available.", b.City, b.Country, b.GrossYieldPct.StringFixed(1))
	}
	return fmt.Sprintf("Best gross yield: %s (%s) ~ %s%% vs lowest: %s (%s) ~ %s%%.",
		b.City, b.Country, b.GrossYieldPct.StringFixed(1),
		w.City, w.Country, w.GrossYieldPct.StringFixed(1))
}

func formatGap(low, high decimal.Decimal) string {
	if !low.IsPositive() {
		return "n/a"
	}
	return GapPct(low, high).StringFixed(1) + "%"
}
