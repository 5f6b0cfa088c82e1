// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play PlayConfig `toml:"play"`
}

// PlayConfig maps game-related settings. Nil fields were not set in the file.
type PlayConfig struct {
	Level      *int    `toml:"level"`
	APIURL     *string `toml:"api-url"`
	WindowMs   *int    `toml:"window-ms"`
	BasePoints *int    `toml:"base-points"`
	LevelsFile *string `toml:"levels-file"`
	Wordlist   *string `toml:"wordlist"`
	MinLength  *int    `toml:"min-length"`
	MaxLength  *int    `toml:"max-length"`
	LogLevel   *string `toml:"log-level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// DefaultConfigTemplate is written by `beattype config` when no file exists.
const DefaultConfigTemplate = `[play]
# level = 1
# api-url = "http://localhost:5000"
# window-ms = 200
# base-points = 10
# levels-file = ""
# wordlist = ""
# min-length = 2
# max-length = 12
# log-level = "info"
`
