package rhythm

import "math"

const (
	// DefaultBasePoints is awarded per hit before multipliers.
	DefaultBasePoints = 10
	// ComboStep is the multiplier bonus per combo step.
	ComboStep = 0.1
)

// State is a snapshot of aggregated session scoring.
type State struct {
	Score      int
	Combo      int
	MaxCombo   int
	Accuracy   float64
	Keystrokes int
	Hits       int
	Misses     int
}

// Aggregator keeps score, combo and a running accuracy mean.
//
// Accuracy is a running mean over every keystroke of the session; the
// keystroke count is never reset between words, so late-session accuracy
// reacts slowly to recent play.
type Aggregator struct {
	basePoints int
	state      State

	wordAccuracy   float64
	wordKeystrokes int
}

// NewAggregator returns an Aggregator; non-positive basePoints selects
// DefaultBasePoints.
func NewAggregator(basePoints int) *Aggregator {
	if basePoints <= 0 {
		basePoints = DefaultBasePoints
	}
	return &Aggregator{basePoints: basePoints}
}

// Points computes the award for a hit with the given combo before the hit.
func Points(basePoints, comboBefore int, score float64) int {
	comboMultiplier := 1 + ComboStep*float64(comboBefore)
	timingMultiplier := 1 + score
	return int(math.Round(float64(basePoints) * comboMultiplier * timingMultiplier))
}

// RecordHit adds points for a correctly typed letter and returns them.
func (a *Aggregator) RecordHit(score float64) int {
	score = math.Max(0, math.Min(1, score))
	points := Points(a.basePoints, a.state.Combo, score)
	a.state.Score += points
	a.state.Combo++
	if a.state.Combo > a.state.MaxCombo {
		a.state.MaxCombo = a.state.Combo
	}
	a.state.Hits++
	a.observe(score * 100)
	return points
}

// RecordMiss breaks the combo and counts a zero-accuracy keystroke.
func (a *Aggregator) RecordMiss() {
	a.state.Combo = 0
	a.state.Misses++
	a.observe(0)
}

// BeginWord resets the per-word accuracy window. Session accuracy is not
// affected.
func (a *Aggregator) BeginWord() {
	a.wordAccuracy = 0
	a.wordKeystrokes = 0
}

// WordAccuracy returns the running accuracy since the last BeginWord.
func (a *Aggregator) WordAccuracy() float64 {
	return a.wordAccuracy
}

// State returns a copy of the aggregate state.
func (a *Aggregator) State() State {
	return a.state
}

func (a *Aggregator) observe(contribution float64) {
	n := float64(a.state.Keystrokes)
	a.state.Accuracy = (a.state.Accuracy*n + contribution) / (n + 1)
	a.state.Keystrokes++

	w := float64(a.wordKeystrokes)
	a.wordAccuracy = (a.wordAccuracy*w + contribution) / (w + 1)
	a.wordKeystrokes++
}
