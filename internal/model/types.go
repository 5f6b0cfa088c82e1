// Package model defines shared data structures.
package model

import "time"

// Config defines play settings after flags and the config file are merged.
type Config struct {
	Level      int
	APIURL     string
	WindowMs   int
	BasePoints int
	LevelsFile string
	Wordlist   string
	MinLength  int
	MaxLength  int
	LogLevel   string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Level       int
	Since       *time.Time
	Last        int
	CurveWindow int
	Chars       string
}

// SessionStats captures a finished game session.
type SessionStats struct {
	UUID           string
	StartedAt      time.Time
	EndedAt        time.Time
	Level          int
	LevelName      string
	Tempo          float64
	Pattern        string
	Score          int
	MaxCombo       int
	WordsCompleted int
	Accuracy       float64
	Hits           int
	Misses         int
	DurationMs     int64
}

// CharStats stores per-character timing stats for a session.
type CharStats struct {
	Char           string
	Hits           int
	Misses         int
	ScoreSum       float64
	AbsOffsetSumMs int64
}

// Aggregated per-char stats for reporting.

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char           string
	Hits           int
	Misses         int
	ScoreSum       float64
	AbsOffsetSumMs int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID      int64
	EndedAt        time.Time
	Level          int
	Score          int
	MaxCombo       int
	WordsCompleted int
	Accuracy       float64
	Hits           int
	Misses         int
	DurationMs     int64
}

// Totals summarizes the whole history.
type Totals struct {
	Sessions       int
	WordsCompleted int
	AvgAccuracy    float64
}
