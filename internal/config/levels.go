package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/beattype/internal/challenge"
	"github.com/verte-zerg/beattype/internal/rhythm"
)

// LevelsFile is a YAML level pack.
type LevelsFile struct {
	Levels []LevelSpec `yaml:"levels"`
}

// LevelSpec is one level entry. Pattern accepts "1010", "x.x." or [1, 0, 1, 0].
type LevelSpec struct {
	ID      int          `yaml:"id"`
	Name    string       `yaml:"name"`
	BPM     float64      `yaml:"bpm"`
	Pattern PatternValue `yaml:"pattern"`
}

// PatternValue decodes a rhythm pattern from a YAML string or int sequence.
type PatternValue struct {
	rhythm.Pattern
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PatternValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		pattern, err := rhythm.ParsePattern(node.Value)
		if err != nil {
			return err
		}
		p.Pattern = pattern
		return nil
	case yaml.SequenceNode:
		var values []int
		if err := node.Decode(&values); err != nil {
			return fmt.Errorf("failed to decode pattern: %w", err)
		}
		pattern, err := rhythm.PatternFromInts(values)
		if err != nil {
			return err
		}
		p.Pattern = pattern
		return nil
	default:
		return fmt.Errorf("line %d: pattern must be a string or a list", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (p PatternValue) MarshalYAML() (any, error) {
	return p.String(), nil
}

// LoadLevels reads a level pack. An empty path or a missing file yields the
// built-in levels.
func LoadLevels(path string) ([]challenge.Level, error) {
	if path == "" {
		return challenge.DefaultLevels(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return challenge.DefaultLevels(), nil
		}
		return nil, fmt.Errorf("failed to read levels: %w", err)
	}
	return ParseLevels(data)
}

// ParseLevels decodes and validates a YAML level pack.
func ParseLevels(data []byte) ([]challenge.Level, error) {
	var file LevelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode levels: %w", err)
	}
	if len(file.Levels) == 0 {
		return nil, fmt.Errorf("failed to decode levels: %w", &rhythm.ConfigError{Field: "levels", Reason: "no levels defined"})
	}
	seen := make(map[int]bool, len(file.Levels))
	levels := make([]challenge.Level, 0, len(file.Levels))
	for _, entry := range file.Levels {
		if entry.ID <= 0 {
			return nil, &rhythm.ConfigError{Field: "id", Reason: fmt.Sprintf("level %q: id must be positive", entry.Name)}
		}
		if seen[entry.ID] {
			return nil, &rhythm.ConfigError{Field: "id", Reason: fmt.Sprintf("duplicate level id %d", entry.ID)}
		}
		seen[entry.ID] = true
		// NewClock applies the same tempo and pattern checks used at session start.
		if _, err := rhythm.NewClock(entry.BPM, entry.Pattern.Pattern, time.Time{}); err != nil {
			return nil, fmt.Errorf("level %d: %w", entry.ID, err)
		}
		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("Level %d", entry.ID)
		}
		levels = append(levels, challenge.Level{ID: entry.ID, Name: name, Tempo: entry.BPM, Pattern: entry.Pattern.Pattern})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].ID < levels[j].ID })
	return levels, nil
}

// MarshalLevels encodes levels as a YAML level pack.
func MarshalLevels(levels []challenge.Level) ([]byte, error) {
	file := LevelsFile{Levels: make([]LevelSpec, 0, len(levels))}
	for _, l := range levels {
		file.Levels = append(file.Levels, LevelSpec{ID: l.ID, Name: l.Name, BPM: l.Tempo, Pattern: PatternValue{l.Pattern}})
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("failed to encode levels: %w", err)
	}
	return data, nil
}
