// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/beattype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes words and keystrokes per minute for a session.
func SessionMetrics(s model.SessionAggregate) (wpm, kpm float64) {
	if s.DurationMs <= 0 {
		return 0, 0
	}
	minutes := float64(s.DurationMs) / 60000.0
	wpm = float64(s.WordsCompleted) / minutes
	kpm = float64(s.Hits+s.Misses) / minutes
	return wpm, kpm
}

// CharMeanScore returns the mean timing score of a character in 0..1.
// Misses count as zero.
func CharMeanScore(agg model.CharAggregate) float64 {
	total := agg.Hits + agg.Misses
	if total == 0 {
		return 0
	}
	return agg.ScoreSum / float64(total)
}

// CharAvgOffset returns the mean absolute timing offset of hits in ms.
func CharAvgOffset(agg model.CharAggregate) float64 {
	if agg.Hits == 0 {
		return 0
	}
	return float64(agg.AbsOffsetSumMs) / float64(agg.Hits)
}

// Overview aggregates a list of sessions.
type Overview struct {
	Sessions    int
	TotalScore  int
	BestScore   int
	AvgScore    float64
	MaxCombo    int
	AvgAccuracy float64
	AvgWPM      float64
	Words       int
}

// Summarize builds an Overview.
func Summarize(sessions []model.SessionAggregate) Overview {
	var o Overview
	if len(sessions) == 0 {
		return o
	}
	var totalAcc, totalWPM float64
	for _, s := range sessions {
		wpm, _ := SessionMetrics(s)
		totalWPM += wpm
		totalAcc += s.Accuracy
		o.TotalScore += s.Score
		o.Words += s.WordsCompleted
		if s.Score > o.BestScore {
			o.BestScore = s.Score
		}
		if s.MaxCombo > o.MaxCombo {
			o.MaxCombo = s.MaxCombo
		}
	}
	count := float64(len(sessions))
	o.Sessions = len(sessions)
	o.AvgScore = float64(o.TotalScore) / count
	o.AvgAccuracy = totalAcc / count
	o.AvgWPM = totalWPM / count
	return o
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample averages or stretches values to exactly width points.
func Resample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := max((i+1)*len(values)/width, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	o := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", o.Sessions),
		fmt.Sprintf("Best Score: %d", o.BestScore),
		fmt.Sprintf("Avg Score: %.1f", o.AvgScore),
		fmt.Sprintf("Max Combo: %d", o.MaxCombo),
		fmt.Sprintf("Words: %d", o.Words),
		fmt.Sprintf("Avg WPM: %.2f", o.AvgWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", o.AvgAccuracy),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints score and accuracy sparklines, smoothed over window
// sessions and squeezed into width columns when width is positive.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	scores := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		scores[i] = float64(s.Score)
		accs[i] = s.Accuracy
	}
	series := []struct {
		name   string
		values []float64
	}{
		{"Score", MovingAverage(scores, window)},
		{"Accuracy", MovingAverage(accs, window)},
	}
	if _, err := fmt.Fprintf(w, "Curves (window %d)\n", max(window, 1)); err != nil {
		return err
	}
	for _, s := range series {
		values := Resample(s.values, width-12)
		lo, hi := minMax(values)
		if _, err := fmt.Fprintf(w, "%-9s |%s| %.1f..%.1f\n", s.name, Sparkline(values), lo, hi); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// CharRows formats aggregates as table rows sorted by lowest mean timing
// score. Spaces are labeled.
func CharRows(aggs []model.CharAggregate) [][]string {
	sorted := append([]model.CharAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		si, sj := CharMeanScore(sorted[i]), CharMeanScore(sorted[j])
		if si == sj {
			return sorted[i].Char < sorted[j].Char
		}
		return si < sj
	})
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		label := agg.Char
		if label == " " {
			label = "<space>"
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%.1f%%", CharMeanScore(agg)*100),
			fmt.Sprintf("%.1f", CharAvgOffset(agg)),
			fmt.Sprintf("%d", agg.Hits),
			fmt.Sprintf("%d", agg.Misses),
		})
	}
	return rows
}

// CharHeaders are the column titles matching CharRows.
var CharHeaders = []string{"Char", "Timing", "Avg Offset (ms)", "Hits", "Misses"}

// RenderCharTable prints per-character aggregates.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Character Timing"); err != nil {
		return err
	}
	lines := formatTable(charColumns, CharRows(aggs))
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
