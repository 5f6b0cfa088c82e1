// Package generator picks challenge words by difficulty level.
package generator

import (
	"math"
	"math/rand"
	"time"
	"unicode"

	"github.com/verte-zerg/beattype/internal/wordlist"
)

// Generator produces randomized challenge words.
type Generator struct {
	rnd     *rand.Rand
	byLevel map[int][]string
}

// New returns a Generator over words seeded with the current time.
func New(words []string) *Generator {
	return NewSeeded(words, time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(words []string, seed int64) *Generator {
	g := &Generator{
		rnd:     rand.New(rand.NewSource(seed)),
		byLevel: map[int][]string{},
	}
	for _, word := range words {
		level := Difficulty(word)
		g.byLevel[level] = append(g.byLevel[level], word)
	}
	return g
}

// Pick selects a word whose difficulty lies within level±variance. When no
// such word exists the built-in list for level is used.
func (g *Generator) Pick(level, variance int) string {
	level = wordlist.ClampLevel(level)
	if variance < 0 {
		variance = 0
	}
	lo := wordlist.ClampLevel(level - variance)
	hi := wordlist.ClampLevel(level + variance)
	total := 0
	for l := lo; l <= hi; l++ {
		total += len(g.byLevel[l])
	}
	if total == 0 {
		fallback := wordlist.Fallback(level)
		return fallback[g.rnd.Intn(len(fallback))]
	}
	idx := g.rnd.Intn(total)
	for l := lo; l <= hi; l++ {
		if idx < len(g.byLevel[l]) {
			return g.byLevel[l][idx]
		}
		idx -= len(g.byLevel[l])
	}
	return ""
}

// PickWeighted draws a level around level with weights 0.2/0.6/0.2 for
// level-1, level and level+1, then picks a word of exactly that level.
func (g *Generator) PickWeighted(level int) string {
	r := g.rnd.Float64()
	switch {
	case r < 0.2:
		level--
	case r >= 0.8:
		level++
	}
	return g.Pick(level, 0)
}

// Difficulty scores a word from 1 to 5 using length, character complexity,
// doubled letters and the keyboard patterns between adjacent letters.
func Difficulty(word string) int {
	runes := []rune(word)
	n := len(runes)
	if n == 0 {
		return wordlist.MinLevel
	}
	lengthScore := math.Min(float64(n)/3, 2.5)

	counts := map[rune]int{}
	for _, r := range runes {
		counts[r]++
	}
	complexity := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			complexity++
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			complexity++
		}
		if unicode.IsDigit(r) {
			complexity++
		}
		if counts[r] > 1 {
			complexity++
		}
	}
	complexityScore := float64(complexity) / float64(n)

	doubled := 0
	for i := 0; i+1 < n; i++ {
		if runes[i] == runes[i+1] {
			doubled++
		}
	}
	rhythmScore := float64(doubled) / float64(n)

	total := lengthScore + complexityScore + rhythmScore + keyboardScore(word, n)
	return wordlist.ClampLevel(int(math.Round(total + 1)))
}
