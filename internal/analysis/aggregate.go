package analysis

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Group is the median and size of one key tuple.
type Group struct {
	Keys   []string        `json:"keys"`
	Median decimal.Decimal `json:"median"`
	Count  int             `json:"count"`
}

// Key returns the i-th key part or "" when absent.
func (g Group) Key(i int) string {
	if i < 0 || i >= len(g.Keys) {
		return ""
	}
	return g.Keys[i]
}

// Aggregate groups records by the tuple returned from keys and computes the
// median of value per group. Groups come out in order of first appearance.
func Aggregate[T any](records []T, keys func(T) []string, value func(T) decimal.Decimal) []Group {
	type bucket struct {
		keys   []string
		values []decimal.Decimal
	}

	index := make(map[string]int)
	buckets := make([]*bucket, 0)
	for _, rec := range records {
		k := keys(rec)
		id := strings.Join(k, "\x1f")
		pos, ok := index[id]
		if !ok {
			pos = len(buckets)
			index[id] = pos
			buckets = append(buckets, &bucket{keys: k})
		}
		buckets[pos].values = append(buckets[pos].values, value(rec))
	}

	groups := make([]Group, 0, len(buckets))
	for _, b := range buckets {
		groups = append(groups, Group{
			Keys:   b.keys,
			Median: Median(b.values),
			Count:  len(b.values),
		})
	}
	return groups
}

// Median returns the statistical median of values; even-sized input averages the
// two central values. Empty input returns zero.
func Median(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}
