package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/uimacro/internal/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	opts := cfg.Playback.Options()
	if opts.Speed != 1 || !opts.ShowIndicator || opts.StopOnError {
		t.Errorf("unexpected default options %+v", opts)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "uimacro.toml", `
[log]
level = "debug"

[playback]
stop_on_error = true
speed = 2.5
looping = true

[capture]
merge_pointer_moves = false

[store]
dir = "/var/lib/uimacro"
watch = true

[scripts]
dir = "/etc/uimacro/ops"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Prefix != "uimacro" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if !cfg.Playback.StopOnError || cfg.Playback.Speed != 2.5 || !cfg.Playback.Looping {
		t.Errorf("playback = %+v", cfg.Playback)
	}
	if !cfg.Playback.ShowIndicator {
		t.Error("unset show_indicator lost its default")
	}
	if cfg.Capture.MergePointerMoves {
		t.Error("merge_pointer_moves not applied")
	}
	if cfg.Store.Dir != "/var/lib/uimacro" || !cfg.Store.Watch || cfg.Scripts.Dir != "/etc/uimacro/ops" {
		t.Errorf("store = %+v scripts = %+v", cfg.Store, cfg.Scripts)
	}
}

func TestLoadYAML(t *testing.T) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := writeFile(t, "uimacro"+ext, `
log:
  level: warn
playback:
  ignore_delays: true
  speed: 0.5
store:
  dir: macros
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", ext, err)
		}
		if cfg.Log.Level != "warn" || !cfg.Playback.IgnoreDelays || cfg.Playback.Speed != 0.5 || cfg.Store.Dir != "macros" {
			t.Errorf("%s: cfg = %+v", ext, cfg)
		}
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Playback.Speed != 1 {
		t.Errorf("speed = %g, want default 1", cfg.Playback.Speed)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != Default().Log.Level {
		t.Errorf("missing file did not yield defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"unknown extension", "uimacro.json", `{}`, ErrUnsupportedFormat},
		{"zero speed", "a.toml", "[playback]\nspeed = 0\n", ErrValidationFailed},
		{"negative speed yaml", "a.yaml", "playback:\n  speed: -2\n", ErrValidationFailed},
		{"bad level", "a.toml", "[log]\nlevel = \"loud\"\n", ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantLine bool
	}{
		{"toml syntax", "a.toml", "[playback\nspeed = 1\n", true},
		{"toml unknown key", "a.toml", "[playback]\nsped = 1\n", false},
		{"yaml unknown key", "a.yaml", "playback:\n  sped: 1\n", false},
		{"yaml syntax", "a.yaml", "playback: [\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if tt.wantLine && perr.Line == 0 {
				t.Errorf("parse error has no line: %v", perr)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvStoreDir, "/env/macros")
	t.Setenv(EnvScriptsDir, "/env/ops")

	cfg, err := Load(writeFile(t, "a.toml", "[store]\ndir = \"/file/macros\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "error" || cfg.Store.Dir != "/env/macros" || cfg.Scripts.Dir != "/env/ops" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestParse(t *testing.T) {
	cfg := Default()
	if err := Parse("toml", []byte("[playback]\nspeed = 3.0\n"), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Playback.Speed != 3 {
		t.Errorf("speed = %g", cfg.Playback.Speed)
	}
	if err := Parse("ini", nil, &cfg); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLogConfigLogger(t *testing.T) {
	l, err := LogConfig{Level: "warn"}.Logger(nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.Enabled(logging.LevelInfo) || !l.Enabled(logging.LevelWarn) {
		t.Error("logger level not applied")
	}
	if _, err := (LogConfig{Level: "chatty"}).Logger(nil); err == nil {
		t.Error("unknown level accepted")
	}
}
