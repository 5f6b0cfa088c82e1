// Package rhythm implements the beat grid, word scheduling and timing scoring.
package rhythm

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks an invalid tempo or rhythm pattern.
var ErrConfiguration = errors.New("invalid rhythm configuration")

// ConfigError describes which setting was rejected.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrConfiguration so callers can use errors.Is.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
