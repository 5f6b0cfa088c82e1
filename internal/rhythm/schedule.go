package rhythm

import "time"

// TimingPoint is the beat a single letter of a word must land on.
type TimingPoint struct {
	Char     rune
	Beat     int64
	Expected time.Time
}

// Schedule assigns each rune of word to the next active beat at or after
// startingBeat. Beats are never reused, so expected times are strictly
// increasing.
func Schedule(clock *Clock, word string, startingBeat int64) []TimingPoint {
	runes := []rune(word)
	points := make([]TimingPoint, 0, len(runes))
	if startingBeat < 0 {
		startingBeat = 0
	}
	beat := startingBeat
	for _, r := range runes {
		for !clock.IsActive(beat) {
			beat++
		}
		points = append(points, TimingPoint{
			Char:     r,
			Beat:     beat,
			Expected: clock.BeatTime(beat),
		})
		beat++
	}
	return points
}

// NextStartBeat returns the beat immediately after the last assigned beat,
// or fallback when points is empty.
func NextStartBeat(points []TimingPoint, fallback int64) int64 {
	if len(points) == 0 {
		return fallback
	}
	return points[len(points)-1].Beat + 1
}
