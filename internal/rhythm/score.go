package rhythm

import (
	"math"
	"time"
)

// DefaultWindow is the deviation at which a keystroke scores zero.
const DefaultWindow = 200 * time.Millisecond

// Grade buckets a normalized timing score.
type Grade int

const (
	GradeMiss Grade = iota
	GradeBad
	GradeOkay
	GradeGood
	GradePerfect
)

func (g Grade) String() string {
	switch g {
	case GradePerfect:
		return "perfect"
	case GradeGood:
		return "good"
	case GradeOkay:
		return "okay"
	case GradeBad:
		return "bad"
	default:
		return "miss"
	}
}

// GradeFor maps a normalized score to a grade. Wrong keys never reach this;
// they are always GradeMiss.
func GradeFor(score float64) Grade {
	switch {
	case score >= 0.9:
		return GradePerfect
	case score >= 0.7:
		return GradeGood
	case score >= 0.5:
		return GradeOkay
	default:
		return GradeBad
	}
}

// Scorer rates keystroke timing against an expected beat.
type Scorer struct {
	Window time.Duration
}

// NewScorer returns a Scorer; a non-positive window selects DefaultWindow.
func NewScorer(window time.Duration) Scorer {
	if window <= 0 {
		window = DefaultWindow
	}
	return Scorer{Window: window}
}

// Score returns clamp(1 - |actual-expected|/window, 0, 1).
func (s Scorer) Score(expected, actual time.Time) float64 {
	window := s.Window
	if window <= 0 {
		window = DefaultWindow
	}
	diff := actual.Sub(expected)
	if diff < 0 {
		diff = -diff
	}
	score := 1 - float64(diff)/float64(window)
	return math.Max(0, math.Min(1, score))
}

// Judgement is the outcome of one keystroke.
type Judgement struct {
	Point  TimingPoint
	Typed  rune
	At     time.Time
	Offset time.Duration
	Score  float64
	Grade  Grade
	Hit    bool
}

// Judge scores a keystroke. A wrong rune scores 0 and grades as a miss
// regardless of timing.
func (s Scorer) Judge(point TimingPoint, typed rune, at time.Time) Judgement {
	j := Judgement{
		Point:  point,
		Typed:  typed,
		At:     at,
		Offset: at.Sub(point.Expected),
	}
	if typed != point.Char {
		j.Grade = GradeMiss
		return j
	}
	j.Hit = true
	j.Score = s.Score(point.Expected, at)
	j.Grade = GradeFor(j.Score)
	return j
}
