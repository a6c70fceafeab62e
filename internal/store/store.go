// Package store keeps macro groups as .wbmacro files in a directory.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro"
	"github.com/dshills/uimacro/internal/macro/codec"
)

// Store errors.
var (
	ErrEmptyName = errors.New("macro file name is empty")
	ErrBadName   = errors.New("macro file name must not contain a path separator")
)

// Store reads and writes macro files in one directory.
type Store struct {
	dir    string
	logger *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger that receives decode warnings.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a store rooted at dir. The directory is created on first
// save.
func New(dir string, opts ...Option) *Store {
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger).WithComponent("store")
	return s
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path for name, adding the macro file extension when
// it is missing.
func (s *Store) Path(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%q: %w", name, ErrBadName)
	}
	if filepath.Ext(name) != codec.FileExtension {
		name += codec.FileExtension
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes g to the file called name.
func (s *Store) Save(name string, g *macro.Group) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := SaveFile(path, g); err != nil {
		return err
	}
	s.logger.Debug("Saved group %q to %s", g.Name(), path)
	return nil
}

// Load reads the file called name into a new group.
func (s *Store) Load(name string) (*macro.Group, codec.Warnings, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, nil, err
	}
	g := macro.NewGroup("")
	ws, err := LoadFile(path, g, s.logger)
	if err != nil {
		return nil, ws, err
	}
	return g, ws, nil
}

// List returns the names of the macro files in the store, sorted. A
// missing directory is an empty store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list macro files: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != codec.FileExtension {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the file called name.
func (s *Store) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove macro file: %w", err)
	}
	return nil
}

// SaveFile encodes g and writes it to path. The file is written atomically
// using a temporary file and rename.
func SaveFile(path string, g *macro.Group) error {
	data, err := codec.Encode(g)
	if err != nil {
		return fmt.Errorf("failed to encode macros: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// LoadFile decodes the file at path into g. Decode warnings are logged and
// returned; g is left empty when decoding fails.
func LoadFile(path string, g *macro.Group, logger *logging.Logger) (codec.Warnings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read macros file: %w", err)
	}
	ws, err := codec.Decode(data, g)
	if len(ws) > 0 {
		logging.OrNop(logger).Warn("Reading Macro's Warnings: %s", ws)
	}
	if err != nil {
		return ws, fmt.Errorf("%s: %w", path, err)
	}
	return ws, nil
}

// ChangeKind describes what happened to a macro file.
type ChangeKind int

const (
	Created ChangeKind = iota
	Modified
	Removed
)

// String returns the change name.
func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one event reported by Watch.
type Change struct {
	Name string
	Path string
	Kind ChangeKind
}

// Watch reports changes to macro files in the store directory until ctx is
// done. The directory must exist. Watch returns once the watch is in place;
// fn is called from a separate goroutine.
func (s *Store) Watch(ctx context.Context, fn func(Change)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(s.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	go func() {
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if c, ok := toChange(ev); ok {
					fn(c)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Watch error: %v", err)
			}
		}
	}()
	return nil
}

func toChange(ev fsnotify.Event) (Change, bool) {
	if filepath.Ext(ev.Name) != codec.FileExtension {
		return Change{}, false
	}
	c := Change{Name: filepath.Base(ev.Name), Path: ev.Name}
	switch {
	case ev.Has(fsnotify.Create):
		c.Kind = Created
	case ev.Has(fsnotify.Write):
		c.Kind = Modified
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		c.Kind = Removed
	default:
		return Change{}, false
	}
	return c, true
}
