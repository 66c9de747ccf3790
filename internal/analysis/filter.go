package analysis

import "strings"

// Filter keeps the records where any of fields contains query, ignoring case.
// Order is preserved. The query is matched as given, surrounding spaces included.
// An empty query keeps everything; no match yields an empty slice.
func Filter[T any](records []T, query string, fields ...func(T) string) []T {
	if query == "" {
		out := make([]T, len(records))
		copy(out, records)
		return out
	}

	needle := strings.ToLower(query)
	out := make([]T, 0)
	for _, rec := range records {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(rec)), needle) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
