// Package challenge talks to the challenge service that hands out levels and
// words and collects word results.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/beattype/internal/rhythm"
)

// ErrNetwork marks failures reaching or understanding the challenge service.
var ErrNetwork = errors.New("challenge service unavailable")

// NetworkError wraps a transport, status or decoding failure for one call.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports ErrNetwork so callers can use errors.Is.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// Level is the tempo and rhythm of one difficulty level.
type Level struct {
	ID      int
	Name    string
	Tempo   float64
	Pattern rhythm.Pattern
}

// WordResult is reported after every completed or abandoned word.
type WordResult struct {
	Word         string
	Score        int
	Accuracy     float64
	Combo        int
	Completed    bool
	TimingPoints []rhythm.TimingPoint
}

// EndResult is the service's view of a finished session.
type EndResult struct {
	MaxCombo       int
	WordsCompleted int
}

// Source supplies levels and words to a game session.
type Source interface {
	StartSession(ctx context.Context, level int) (Level, error)
	NextWord(ctx context.Context) (string, error)
	SubmitWordResult(ctx context.Context, result WordResult) error
	EndSession(ctx context.Context) (EndResult, error)
}

// wire types for the HTTP API.

type startRequest struct {
	Level int `json:"level"`
}

type startResponse struct {
	Success       bool    `json:"success"`
	Name          string  `json:"name"`
	BPM           float64 `json:"bpm"`
	RhythmPattern []int   `json:"rhythm_pattern"`
	Error         string  `json:"error,omitempty"`
}

type challengeResponse struct {
	Word  string `json:"word"`
	Error string `json:"error,omitempty"`
}

type timingPointJSON struct {
	Letter string `json:"letter"`
	Beat   int64  `json:"beat"`
	TimeMs int64  `json:"time"`
}

type submitRequest struct {
	Word         string            `json:"word"`
	Score        int               `json:"score"`
	Accuracy     float64           `json:"accuracy"`
	Combo        int               `json:"combo"`
	Completed    bool              `json:"completed"`
	TimingPoints []timingPointJSON `json:"timing_points"`
}

type endResponse struct {
	Success bool `json:"success"`
	Stats   struct {
		MaxCombo       int `json:"max_combo"`
		WordsCompleted int `json:"words_completed"`
	} `json:"stats"`
	Error string `json:"error,omitempty"`
}

func encodeTimingPoints(points []rhythm.TimingPoint) []timingPointJSON {
	out := make([]timingPointJSON, len(points))
	for i, p := range points {
		out[i] = timingPointJSON{
			Letter: string(p.Char),
			Beat:   p.Beat,
			TimeMs: p.Expected.UnixNano() / int64(time.Millisecond),
		}
	}
	return out
}
