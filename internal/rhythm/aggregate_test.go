package rhythm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsFormula(t *testing.T) {
	assert.Equal(t, 23, Points(10, 3, 0.8))
	assert.Equal(t, 20, Points(10, 0, 1))
	assert.Equal(t, 10, Points(10, 0, 0))
}

func TestRecordHitWithCombo(t *testing.T) {
	a := NewAggregator(10)
	for i := 0; i < 3; i++ {
		a.RecordHit(1)
	}
	points := a.RecordHit(0.8)
	assert.Equal(t, 23, points)
	assert.Equal(t, 4, a.State().Combo)
	assert.Equal(t, 4, a.State().MaxCombo)
}

func TestComboIncrementsByOneRegardlessOfScore(t *testing.T) {
	a := NewAggregator(0)
	for i, score := range []float64{0, 0.1, 0.55, 1} {
		a.RecordHit(score)
		assert.Equal(t, i+1, a.State().Combo)
	}
}

func TestMissResetsCombo(t *testing.T) {
	a := NewAggregator(10)
	a.RecordHit(1)
	a.RecordHit(1)
	a.RecordMiss()
	st := a.State()
	assert.Equal(t, 0, st.Combo)
	assert.Equal(t, 2, st.MaxCombo)
	assert.Equal(t, 2, st.Hits)
	assert.Equal(t, 1, st.Misses)
	a.RecordMiss()
	assert.Equal(t, 0, a.State().Combo)
}

func TestAccuracyRunningMean(t *testing.T) {
	a := NewAggregator(10)
	a.RecordHit(1)
	assert.InDelta(t, 100, a.State().Accuracy, 1e-9)
	a.RecordMiss()
	assert.InDelta(t, 50, a.State().Accuracy, 1e-9)
	a.RecordHit(0.5)
	assert.InDelta(t, 50, a.State().Accuracy, 1e-9)
	assert.Equal(t, 3, a.State().Keystrokes)
}

func TestWordAccuracyWindowIsIndependent(t *testing.T) {
	a := NewAggregator(10)
	a.RecordMiss()
	a.RecordMiss()
	a.BeginWord()
	a.RecordHit(1)
	assert.InDelta(t, 100, a.WordAccuracy(), 1e-9)
	assert.InDelta(t, 100.0/3, a.State().Accuracy, 1e-9)
}
