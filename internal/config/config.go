// Package config loads uimacro settings from a TOML or YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro/playback"
)

// Config is the complete configuration.
type Config struct {
	Log      LogConfig      `toml:"log" yaml:"log"`
	Playback PlaybackConfig `toml:"playback" yaml:"playback"`
	Capture  CaptureConfig  `toml:"capture" yaml:"capture"`
	Store    StoreConfig    `toml:"store" yaml:"store"`
	Scripts  ScriptsConfig  `toml:"scripts" yaml:"scripts"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// Prefix is written before each message.
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// PlaybackConfig holds the default run options.
type PlaybackConfig struct {
	StopOnError   bool    `toml:"stop_on_error" yaml:"stop_on_error"`
	ShowIndicator bool    `toml:"show_indicator" yaml:"show_indicator"`
	IgnoreDelays  bool    `toml:"ignore_delays" yaml:"ignore_delays"`
	Looping       bool    `toml:"looping" yaml:"looping"`
	Speed         float64 `toml:"speed" yaml:"speed"`
	// Strict panics when a recorded value does not fit its control.
	Strict bool `toml:"strict" yaml:"strict"`
}

// CaptureConfig configures recording.
type CaptureConfig struct {
	MergePointerMoves bool `toml:"merge_pointer_moves" yaml:"merge_pointer_moves"`
}

// StoreConfig configures the macro file store.
type StoreConfig struct {
	Dir   string `toml:"dir" yaml:"dir"`
	Watch bool   `toml:"watch" yaml:"watch"`
}

// ScriptsConfig configures Lua custom operations.
type ScriptsConfig struct {
	// Dir holds *.lua operation scripts. Empty disables script loading.
	Dir string `toml:"dir" yaml:"dir"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Prefix: "uimacro",
		},
		Playback: PlaybackConfig{
			ShowIndicator: true,
			Speed:         1,
		},
		Capture: CaptureConfig{
			MergePointerMoves: true,
		},
		Store: StoreConfig{
			Dir: DefaultStoreDir(),
		},
	}
}

// DefaultStoreDir returns the default macro directory.
// On Unix-like systems: ~/.config/uimacro/macros
func DefaultStoreDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "macros"
	}
	return filepath.Join(dir, "uimacro", "macros")
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Field: "log.level", Message: err.Error()}
	}
	if c.Playback.Speed <= 0 {
		return &ValidationError{
			Field:   "playback.speed",
			Message: fmt.Sprintf("must be greater than zero, got %g", c.Playback.Speed),
		}
	}
	if c.Store.Dir == "" {
		return &ValidationError{Field: "store.dir", Message: "must not be empty"}
	}
	return nil
}

// Options converts the playback section to run options.
func (p PlaybackConfig) Options() playback.Options {
	return playback.Options{
		StopOnError:   p.StopOnError,
		ShowIndicator: p.ShowIndicator,
		IgnoreDelays:  p.IgnoreDelays,
		Looping:       p.Looping,
		Speed:         p.Speed,
	}
}

// Logger creates a logger writing to out, os.Stderr when nil.
func (l LogConfig) Logger(out io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{Level: level, Output: out, Prefix: l.Prefix}), nil
}
