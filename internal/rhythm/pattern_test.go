package rhythm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("1010")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, 2, p.ActiveCount())
	assert.Equal(t, "1010", p.String())
	assert.Equal(t, []int{1, 0, 1, 0}, p.Ints())

	p, err = ParsePattern("x.xx | x...")
	require.NoError(t, err)
	assert.Equal(t, "10111000", p.String())
}

func TestParsePatternErrors(t *testing.T) {
	for _, in := range []string{"", "0", "....", "10a1"} {
		_, err := ParsePattern(in)
		assert.ErrorIs(t, err, ErrConfiguration, "input %q", in)
	}
}

func TestNewPatternRejectsAllInactive(t *testing.T) {
	_, err := NewPattern([]bool{false})
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestNewPatternCopiesSlots(t *testing.T) {
	slots := []bool{true, false}
	p, err := NewPattern(slots)
	require.NoError(t, err)
	slots[1] = true
	assert.False(t, p.Active(1))
}

func TestPatternFromInts(t *testing.T) {
	p, err := PatternFromInts([]int{1, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, "1011", p.String())

	_, err = PatternFromInts([]int{0, 0})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestPatternActiveNegativeBeat(t *testing.T) {
	p := MustPattern(true, false, false)
	assert.True(t, p.Active(-3))
	assert.False(t, p.Active(-1))
}
