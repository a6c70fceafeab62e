package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvLogLevel   = "UIMACRO_LOG_LEVEL"
	EnvStoreDir   = "UIMACRO_STORE_DIR"
	EnvScriptsDir = "UIMACRO_SCRIPTS_DIR"
)

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. A missing file yields the defaults.
// The format is chosen by extension: .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".toml" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if ext == ".toml" {
		return parseTOML(path, data, cfg)
	}
	return parseYAML(path, data, cfg)
}

// Parse decodes data of the given format ("toml" or "yaml") over cfg.
func Parse(format string, data []byte, cfg *Config) error {
	switch strings.ToLower(format) {
	case "toml":
		return parseTOML("<"+format+">", data, cfg)
	case "yaml", "yml":
		return parseYAML("<"+format+">", data, cfg)
	default:
		return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}

func parseTOML(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

func parseYAML(source string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvStoreDir); ok && v != "" {
		cfg.Store.Dir = v
	}
	if v, ok := lookup(EnvScriptsDir); ok && v != "" {
		cfg.Scripts.Dir = v
	}
}
