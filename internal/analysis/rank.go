package analysis

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Rank returns a copy of items stably sorted by metric. Ties keep their input order.
func Rank[T any](items []T, metric func(T) decimal.Decimal, ascending bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return metric(out[i]).LessThan(metric(out[j]))
		}
		return metric(out[i]).GreaterThan(metric(out[j]))
	})
	return out
}

// Top returns the first n items, or all of them when fewer are available.
func Top[T any](items []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// Bottom returns the last n items in their ranked order, or all of them when fewer are available.
func Bottom[T any](items []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if n > len(items) {
		n = len(items)
	}
	return items[len(items)-n:]
}

// ByMedian is the ranking metric for groups.
func ByMedian(g Group) decimal.Decimal {
	return g.Median
}
