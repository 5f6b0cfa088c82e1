package generator

import (
	"testing"

	"github.com/verte-zerg/beattype/internal/wordlist"
)

func TestDifficultyBounds(t *testing.T) {
	cases := map[string]int{
		"":                1,
		"the":             2,
		"synchronization": 4,
		"Mississippi":     5,
	}
	for word, want := range cases {
		if got := Difficulty(word); got != want {
			t.Fatalf("Difficulty(%q) = %d, want %d", word, got, want)
		}
	}
	for _, word := range wordlist.FallbackAll() {
		d := Difficulty(word)
		if d < wordlist.MinLevel || d > wordlist.MaxLevel {
			t.Fatalf("difficulty %d out of range for %q", d, word)
		}
	}
}

func TestPickStaysWithinVariance(t *testing.T) {
	g := NewSeeded(wordlist.FallbackAll(), 42)
	for i := 0; i < 200; i++ {
		word := g.Pick(3, 1)
		d := Difficulty(word)
		if d < 2 || d > 4 {
			t.Fatalf("picked %q with difficulty %d outside 2..4", word, d)
		}
	}
}

func TestPickFallsBackWhenLevelEmpty(t *testing.T) {
	g := NewSeeded([]string{"the"}, 1)
	word := g.Pick(5, 0)
	found := false
	for _, w := range wordlist.Fallback(5) {
		if w == word {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fallback level 5 word, got %q", word)
	}
}

func TestPickWeightedReturnsWord(t *testing.T) {
	g := NewSeeded(wordlist.FallbackAll(), 7)
	for i := 0; i < 50; i++ {
		if g.PickWeighted(1) == "" {
			t.Fatalf("expected a word")
		}
	}
}
