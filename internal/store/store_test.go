package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro"
	"github.com/dshills/uimacro/internal/macro/codec"
)

func demoGroup(t *testing.T) *macro.Group {
	t.Helper()
	g := macro.NewGroup("Demo")
	m := macro.New("Toggle grid")
	m.SetDescription("Turns the grid on.")
	cmd, err := macro.NewControlCommand(macro.ControlCheckBox, "showGrid", "Show Grid", "")
	if err != nil {
		t.Fatal(err)
	}
	cmd.AddParameter(macro.MustParameter(macro.DataBoolean, "On/Off", macro.Bool(true)))
	m.Append(cmd)
	g.Append(m)
	return g
}

func TestSaveLoad(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "macros"))
	g := demoGroup(t)

	if err := s.Save("demo", g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	path, _ := s.Path("demo")
	if filepath.Ext(path) != codec.FileExtension {
		t.Errorf("path %q lacks extension", path)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	got, ws, err := s.Load("demo" + codec.FileExtension)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ws) != 0 {
		t.Errorf("unexpected warnings: %s", ws)
	}
	if got.Name() != "Demo" || got.ID() != g.ID() || got.Len() != 1 {
		t.Fatalf("loaded %q with %d macros", got.Name(), got.Len())
	}
	m := got.Macros()[0]
	if m.Name() != "Toggle grid" || m.Len() != 1 || !macro.AsBool(m.Commands()[0].ParameterValue(0)) {
		t.Errorf("macro did not survive the round trip")
	}
}

func TestLoadMissing(t *testing.T) {
	s := New(t.TempDir())
	if _, _, err := s.Load("absent"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestLoadLogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
	dir := t.TempDir()
	s := New(dir, WithLogger(logger))

	data, err := codec.Encode(demoGroup(t))
	if err != nil {
		t.Fatal(err)
	}
	doc := strings.Replace(string(data), "<Description>", "<Thumbnail/><Description>", 1)
	if err := os.WriteFile(filepath.Join(dir, "odd.wbmacro"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ws, err := s.Load("odd")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ws) != 1 {
		t.Fatalf("warnings = %d, want 1", len(ws))
	}
	out := buf.String()
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "Reading Macro's Warnings: ") {
		t.Errorf("warning not logged:\n%s", out)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.wbmacro"), []byte("<NotMacros/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := New(dir).Load("bad"); err == nil {
		t.Error("invalid document loaded")
	}
}

func TestPath(t *testing.T) {
	s := New("/tmp/m")
	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{"demo", filepath.Join("/tmp/m", "demo.wbmacro"), nil},
		{"demo.wbmacro", filepath.Join("/tmp/m", "demo.wbmacro"), nil},
		{"", "", ErrEmptyName},
		{"../x", "", ErrBadName},
	}
	for _, tt := range tests {
		got, err := s.Path(tt.name)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Path(%q) err = %v, want %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Path(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestListAndRemove(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	for _, name := range []string{"zeta", "alpha"} {
		if err := s.Save(name, demoGroup(t)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "alpha.wbmacro" || names[1] != "zeta.wbmacro" {
		t.Errorf("List = %v", names)
	}

	if err := s.Remove("alpha"); err != nil {
		t.Fatal(err)
	}
	names, _ = s.List()
	if len(names) != 1 {
		t.Errorf("List after Remove = %v", names)
	}

	if names, err := New(filepath.Join(dir, "missing")).List(); err != nil || names != nil {
		t.Errorf("missing dir: %v, %v", names, err)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Change, 16)
	if err := s.Watch(ctx, func(c Change) { changes <- c }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := s.Save("watched", demoGroup(t)); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.Name == "watched.wbmacro" && c.Kind == Created {
				return
			}
		case <-deadline:
			t.Fatal("no change reported for saved file")
		}
	}
}

func TestWatchMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent"))
	if err := s.Watch(context.Background(), func(Change) {}); err == nil {
		t.Error("Watch on a missing directory succeeded")
	}
}
