package rhythm

import (
	"math"
	"time"
)

// Clock converts beat indices to absolute times for a fixed tempo and start.
// It never reads wall time; callers pass the current time in.
type Clock struct {
	tempo   float64
	pattern Pattern
	start   time.Time
	beat    time.Duration
}

// NewClock anchors a beat grid at start.
func NewClock(tempo float64, pattern Pattern, start time.Time) (*Clock, error) {
	if math.IsNaN(tempo) || math.IsInf(tempo, 0) || tempo <= 0 {
		return nil, configErrorf("tempo", "must be a positive number of beats per minute, got %v", tempo)
	}
	if !pattern.Valid() || pattern.ActiveCount() == 0 {
		return nil, configErrorf("pattern", "must contain at least one active slot")
	}
	beat := time.Duration(float64(time.Minute) / tempo)
	if beat <= 0 {
		return nil, configErrorf("tempo", "%v BPM is too fast", tempo)
	}
	return &Clock{
		tempo:   tempo,
		pattern: pattern,
		start:   start,
		beat:    beat,
	}, nil
}

// Tempo returns the tempo in beats per minute.
func (c *Clock) Tempo() float64 {
	return c.tempo
}

// Pattern returns the rhythm pattern.
func (c *Clock) Pattern() Pattern {
	return c.pattern
}

// Start returns the anchor time of beat 0.
func (c *Clock) Start() time.Time {
	return c.start
}

// BeatDuration returns the length of one beat.
func (c *Clock) BeatDuration() time.Duration {
	return c.beat
}

// BeatTime returns start + index * beat duration.
func (c *Clock) BeatTime(index int64) time.Time {
	offset := float64(index) * float64(time.Minute) / c.tempo
	return c.start.Add(time.Duration(math.Round(offset)))
}

// CurrentBeat returns the index of the beat in progress at now.
func (c *Clock) CurrentBeat(now time.Time) int64 {
	pos := c.position(now)
	if pos <= 0 {
		return 0
	}
	return int64(math.Floor(pos))
}

// NextBeat returns the first beat index at or after now.
func (c *Clock) NextBeat(now time.Time) int64 {
	pos := c.position(now)
	if pos <= 0 {
		return 0
	}
	return int64(math.Ceil(pos))
}

// IsActive reports whether the slot for index is active in the pattern.
func (c *Clock) IsActive(index int64) bool {
	return c.pattern.Active(index)
}

func (c *Clock) position(now time.Time) float64 {
	elapsed := now.Sub(c.start)
	return float64(elapsed) * c.tempo / float64(time.Minute)
}
