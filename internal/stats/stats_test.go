package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/beattype/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	wpm, kpm := SessionMetrics(model.SessionAggregate{WordsCompleted: 30, Hits: 90, Misses: 30, DurationMs: 120000})
	if wpm != 15 || kpm != 60 {
		t.Fatalf("unexpected metrics: wpm=%v kpm=%v", wpm, kpm)
	}
	if wpm, kpm := SessionMetrics(model.SessionAggregate{WordsCompleted: 3}); wpm != 0 || kpm != 0 {
		t.Fatalf("expected zero metrics for zero duration")
	}
}

func TestCharMetrics(t *testing.T) {
	agg := model.CharAggregate{Hits: 3, Misses: 1, ScoreSum: 2, AbsOffsetSumMs: 90}
	if got := CharMeanScore(agg); got != 0.5 {
		t.Fatalf("expected mean score 0.5, got %v", got)
	}
	if got := CharAvgOffset(agg); got != 30 {
		t.Fatalf("expected offset 30, got %v", got)
	}
	if CharMeanScore(model.CharAggregate{}) != 0 || CharAvgOffset(model.CharAggregate{}) != 0 {
		t.Fatalf("expected zero metrics for empty aggregate")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestResample(t *testing.T) {
	got := Resample([]float64{1, 3, 5, 7}, 2)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected resample %v", got)
	}
	if got := Resample([]float64{1, 2}, 10); len(got) != 2 {
		t.Fatalf("short series must not be stretched: %v", got)
	}
}

func TestRenderSummaryAndCurves(t *testing.T) {
	sessions := []model.SessionAggregate{
		{Score: 100, MaxCombo: 5, WordsCompleted: 10, Accuracy: 90, DurationMs: 60000},
		{Score: 300, MaxCombo: 12, WordsCompleted: 20, Accuracy: 80, DurationMs: 60000},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Best Score: 300", "Avg Score: 200.0", "Max Combo: 12", "Avg WPM: 15.00", "Avg Accuracy: 85.00%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderCurves(&buf, sessions, 1, 80); err != nil {
		t.Fatalf("render curves: %v", err)
	}
	if !strings.Contains(buf.String(), "Score     | @| 100.0..300.0") {
		t.Fatalf("unexpected curves:\n%s", buf.String())
	}
}

func TestRenderCharTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderCharTable(&buf, []model.CharAggregate{
		{Char: "a", Hits: 2, ScoreSum: 2, AbsOffsetSumMs: 20},
		{Char: " ", Hits: 1, Misses: 1, ScoreSum: 0.5, AbsOffsetSumMs: 100},
	})
	if err != nil {
		t.Fatalf("render char table: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 5 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[2], "----") {
		t.Fatalf("expected header rule, got %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "<space>") {
		t.Fatalf("expected weakest char first, got %q", lines[3])
	}
}
