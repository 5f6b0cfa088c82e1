package stats

import (
	"sort"

	"github.com/verte-zerg/beattype/internal/model"
)

// minWeakSamples is the keystroke count below which a character is too
// rarely typed to call weak.
const minWeakSamples = 5

// WeakestChars returns up to top characters with the lowest mean timing
// score, ignoring rarely typed ones.
func WeakestChars(aggs []model.CharAggregate, top int) []string {
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Hits+agg.Misses >= minWeakSamples && agg.Char != " " {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		si, sj := CharMeanScore(candidates[i]), CharMeanScore(candidates[j])
		if si == sj {
			return candidates[i].Char < candidates[j].Char
		}
		return si < sj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for _, agg := range candidates[:top] {
		out = append(out, agg.Char)
	}
	return out
}
