package challenge

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/verte-zerg/beattype/internal/generator"
	"github.com/verte-zerg/beattype/internal/rhythm"
	"github.com/verte-zerg/beattype/internal/wordlist"
)

// DefaultLevels mirrors the service's built-in level table.
func DefaultLevels() []Level {
	return []Level{
		{ID: 1, Name: "Pixelated Heartbeat", Tempo: 120, Pattern: rhythm.MustPattern(true, false, true, false)},
		{ID: 2, Name: "Digital Dreams", Tempo: 140, Pattern: rhythm.MustPattern(true, false, true, true)},
		{ID: 3, Name: "Neon Pulse", Tempo: 160, Pattern: rhythm.MustPattern(true, false, true, false, true, true, true, false)},
		{ID: 4, Name: "Overclock", Tempo: 180, Pattern: rhythm.MustPattern(true, true, false, true, true, false, true, true)},
		{ID: 5, Name: "Event Horizon", Tempo: 200, Pattern: rhythm.MustPattern(true, true, true, false)},
	}
}

// WeightedVariance makes Local draw the word level around the session level
// with weights 0.2/0.6/0.2 instead of uniformly within a variance.
const WeightedVariance = -1

// Local is an in-process Source used offline and as a fallback.
type Local struct {
	gen      *generator.Generator
	levels   map[int]Level
	variance int

	mu             sync.Mutex
	level          int
	maxCombo       int
	wordsCompleted int
}

// NewLocal returns a Local source over levels and a word generator.
func NewLocal(levels []Level, gen *generator.Generator, variance int) *Local {
	if len(levels) == 0 {
		levels = DefaultLevels()
	}
	byID := make(map[int]Level, len(levels))
	for _, l := range levels {
		byID[l.ID] = l
	}
	return &Local{gen: gen, levels: byID, variance: variance, level: 1}
}

// Levels returns the configured levels ordered by id.
func (l *Local) Levels() []Level {
	out := make([]Level, 0, len(l.levels))
	for _, lvl := range l.levels {
		out = append(out, lvl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StartSession implements Source.
func (l *Local) StartSession(_ context.Context, level int) (Level, error) {
	lvl, ok := l.levels[level]
	if !ok {
		return Level{}, fmt.Errorf("level %d: %w", level, &rhythm.ConfigError{Field: "level", Reason: "no such level"})
	}
	l.mu.Lock()
	l.level = level
	l.maxCombo = 0
	l.wordsCompleted = 0
	l.mu.Unlock()
	return lvl, nil
}

// NextWord implements Source.
func (l *Local) NextWord(_ context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.variance == WeightedVariance {
		return l.gen.PickWeighted(l.level), nil
	}
	return l.gen.Pick(l.level, l.variance), nil
}

// SubmitWordResult implements Source.
func (l *Local) SubmitWordResult(_ context.Context, result WordResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if result.Completed {
		l.wordsCompleted++
	}
	if result.Combo > l.maxCombo {
		l.maxCombo = result.Combo
	}
	return nil
}

// EndSession implements Source.
func (l *Local) EndSession(_ context.Context) (EndResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return EndResult{MaxCombo: l.maxCombo, WordsCompleted: l.wordsCompleted}, nil
}

// LevelFor derives a player's level from lifetime totals: one level per 50
// words up to four, plus one for average accuracy of at least 95%, capped at
// the highest level.
func LevelFor(totalWords int, avgAccuracy float64) int {
	base := totalWords / 50
	if base > 4 {
		base = 4
	}
	bonus := 0
	if avgAccuracy >= 95 {
		bonus = 1
	}
	return wordlist.ClampLevel(base + bonus + 1)
}
