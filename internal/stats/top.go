package stats

import (
	"sort"

	"github.com/verte-zerg/beattype/internal/model"
)

// TopCharsByFrequency returns the top N characters by keystroke count.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := append([]model.CharAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Hits+sorted[i].Misses, sorted[j].Hits+sorted[j].Misses
		if ti == tj {
			return sorted[i].Char < sorted[j].Char
		}
		return ti > tj
	})
	n = min(n, len(sorted))
	out := make([]string, 0, n)
	for _, agg := range sorted[:n] {
		out = append(out, agg.Char)
	}
	return out
}

// FilterChars keeps aggregates whose character is in chars. An empty chars
// keeps everything.
func FilterChars(aggs []model.CharAggregate, chars []string) []model.CharAggregate {
	if len(chars) == 0 {
		return aggs
	}
	keep := make(map[string]bool, len(chars))
	for _, ch := range chars {
		keep[ch] = true
	}
	out := make([]model.CharAggregate, 0, len(chars))
	for _, agg := range aggs {
		if keep[agg.Char] {
			out = append(out, agg)
		}
	}
	return out
}
