package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/beattype/internal/challenge"
	"github.com/verte-zerg/beattype/internal/rhythm"
	"github.com/verte-zerg/beattype/internal/session"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		snap: session.Snapshot{
			Phase:          session.PhaseRunning,
			State:          rhythm.State{Score: 420, Combo: 7, MaxCombo: 12, Accuracy: 87.3},
			WordsCompleted: 5,
		},
		hasBest:   true,
		bestScore: 900,
		notice:    "offline: timeout",
	}
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Score 420", "Combo 7", "Max 12", "Acc 87.3%", "Words 5", "Best 900", "offline: timeout"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterHiddenWhenIdle(t *testing.T) {
	m := &Model{}
	if out := m.renderFooter(); out != "" {
		t.Fatalf("expected empty footer, got %q", out)
	}
}

func TestSessionRecord(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	summary := session.Summary{
		Level:          challenge.Level{ID: 2, Name: "Digital Dreams", Tempo: 140, Pattern: rhythm.MustPattern(true, false, true, true)},
		StartedAt:      start,
		EndedAt:        start.Add(90 * time.Second),
		Score:          512,
		MaxCombo:       14,
		WordsCompleted: 9,
		Accuracy:       91.5,
		Hits:           40,
		Misses:         3,
		Chars: map[rune]session.CharTiming{
			'a': {Hits: 4, Misses: 1, ScoreSum: 3.2, AbsOffsetSum: 150 * time.Millisecond},
		},
	}
	stats, chars := sessionRecord(summary)
	if stats.UUID == "" {
		t.Fatalf("expected generated uuid")
	}
	if stats.Level != 2 || stats.Pattern != "1011" || stats.Tempo != 140 || stats.DurationMs != 90000 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(chars) != 1 || chars[0].Char != "a" || chars[0].AbsOffsetSumMs != 150 || chars[0].Misses != 1 {
		t.Fatalf("unexpected chars: %+v", chars)
	}
}

func TestDescribeJudgement(t *testing.T) {
	cases := []struct {
		j    rhythm.Judgement
		want string
	}{
		{rhythm.Judgement{Hit: true, Grade: rhythm.GradePerfect}, "perfect"},
		{rhythm.Judgement{Hit: true, Grade: rhythm.GradeGood, Offset: -40 * time.Millisecond}, "good  40ms early"},
		{rhythm.Judgement{Hit: true, Grade: rhythm.GradeOkay, Offset: 90 * time.Millisecond}, "okay  90ms late"},
		{rhythm.Judgement{Typed: 'x', Point: rhythm.TimingPoint{Char: 'a'}}, `miss: typed 'x', wanted 'a'`},
	}
	for _, tc := range cases {
		if got := describeJudgement(tc.j); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
