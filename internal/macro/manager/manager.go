// Package manager ties capture, playback and custom operations together.
//
// A Manager is the single owner of the recording and running state. The
// host constructs one at start-up and passes it to whatever needs to start
// or stop recording, run macros or react to shortcut keys.
package manager

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro"
	"github.com/dshills/uimacro/internal/macro/capture"
	"github.com/dshills/uimacro/internal/macro/custom"
	"github.com/dshills/uimacro/internal/macro/monitor"
	"github.com/dshills/uimacro/internal/macro/playback"
	"github.com/dshills/uimacro/internal/notify"
)

// Mode is what the manager is doing.
type Mode int

const (
	Off Mode = iota
	RecordingNewMacro
	RecordingInsertCommands
	Running
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Off:
		return "OFF"
	case RecordingNewMacro:
		return "RECORDING_NEW_MACRO"
	case RecordingInsertCommands:
		return "RECORDING_INSERT_COMMANDS"
	case Running:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

// Manager errors.
var (
	ErrBusy         = errors.New("macro manager is busy")
	ErrNotRecording = errors.New("no macro is being recorded")
	ErrNotInMacro   = errors.New("command is not part of the macro")
	ErrEmptyMacro   = errors.New("macro has no commands")
)

// Helper is implemented by the host to take part in macro runs.
type Helper interface {
	// MacroWasModified is called when recording into m ends.
	MacroWasModified(m *macro.Macro)
	// ExecutionStarting and ExecutionEnding bracket every pass of a run.
	ExecutionStarting(m *macro.Macro, opts playback.Options)
	ExecutionEnding(m *macro.Macro, opts playback.Options)
	// ResetMacro restores program state before the next pass of a looping
	// run. It returns the macro to run next, or nil to end the loop.
	ResetMacro(ctx context.Context, m *macro.Macro) (*macro.Macro, error)
}

// Config carries the collaborators of a Manager. Only Tree is required.
type Config struct {
	Tree      control.Tree
	EventLoop playback.EventLoop
	Indicator playback.Indicator
	Sleeper   playback.Sleeper
	Registry  *custom.Registry
	Publisher notify.Publisher
	Logger    *logging.Logger
	Helper    Helper

	// Options are the initial run options.
	Options playback.Options

	// MergePointerMoves merges consecutive drag moves while recording.
	MergePointerMoves bool

	// Strict panics on recorded data that does not fit its control type.
	Strict bool
}

// Manager owns recording and running state.
type Manager struct {
	mu   sync.Mutex
	mode Mode

	recording    *macro.Macro
	insertOffset int
	options      playback.Options
	nameIndex    int

	stopRequested atomic.Bool

	monitor   *monitor.Monitor
	recorder  *capture.Recorder
	engine    *playback.Engine
	registry  *custom.Registry
	publisher notify.Publisher
	helper    Helper
	logger    *logging.Logger
}

// New creates a Manager.
func New(cfg Config) *Manager {
	m := &Manager{
		options:   cfg.Options,
		nameIndex: 1,
		registry:  cfg.Registry,
		publisher: cfg.Publisher,
		helper:    cfg.Helper,
		logger:    logging.OrNop(cfg.Logger),
	}
	if m.publisher == nil {
		m.publisher = notify.Nop{}
	}
	if m.registry == nil {
		m.registry = custom.NewDefaultRegistry()
	}

	var monOpts []monitor.Option
	if cfg.EventLoop != nil {
		monOpts = append(monOpts, monitor.WithYield(cfg.EventLoop.ProcessEvents))
	}
	m.monitor = monitor.New(monOpts...)
	m.monitor.SetMode(monitor.Stop)

	m.recorder = capture.New(m, m,
		capture.WithLogger(m.logger),
		capture.WithPointerMoveMerge(cfg.MergePointerMoves),
	)

	engineOpts := []playback.Option{
		playback.WithMonitor(m.monitor),
		playback.WithRegistry(m.registry),
		playback.WithPublisher(m.publisher),
		playback.WithLogger(m.logger),
		playback.WithStrict(cfg.Strict),
	}
	if cfg.EventLoop != nil {
		engineOpts = append(engineOpts, playback.WithEventLoop(cfg.EventLoop))
	}
	if cfg.Indicator != nil {
		engineOpts = append(engineOpts, playback.WithIndicator(cfg.Indicator))
	}
	if cfg.Sleeper != nil {
		engineOpts = append(engineOpts, playback.WithSleeper(cfg.Sleeper))
	}
	m.engine = playback.New(cfg.Tree, engineOpts...)
	m.logger = m.logger.WithComponent("manager")
	return m
}

// Recorder returns the capture recorder used to bind controls.
func (m *Manager) Recorder() *capture.Recorder { return m.recorder }

// Registry returns the custom operation registry.
func (m *Manager) Registry() *custom.Registry { return m.registry }

// Monitor returns the playback monitor.
func (m *Manager) Monitor() *monitor.Monitor { return m.monitor }

// Mode returns the current mode.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Options returns the run options.
func (m *Manager) Options() playback.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.options
}

// SetOptions replaces the run options used by later runs.
func (m *Manager) SetOptions(opts playback.Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options = opts
}

func (m *Manager) setMode(mode Mode) {
	m.mu.Lock()
	m.mode = mode
	m.mu.Unlock()
	m.logger.Debug("Mode changed to %s", mode)
	m.publisher.Publish(notify.Event{Topic: notify.TopicMode, Index: -1, Payload: mode})
}

// IsRecording implements capture.ModeSource.
func (m *Manager) IsRecording() bool {
	mode := m.Mode()
	return mode == RecordingNewMacro || mode == RecordingInsertCommands
}

// StartRecordingNew creates a macro, appends it to group and records into
// it. An empty name is replaced by a default "Macro N" name unique across
// groups.
func (m *Manager) StartRecordingNew(group *macro.Group, name string, groups ...*macro.Group) (*macro.Macro, error) {
	m.mu.Lock()
	if m.mode != Off {
		mode := m.mode
		m.mu.Unlock()
		return nil, fmt.Errorf("cannot record while %s: %w", mode, ErrBusy)
	}
	if name == "" {
		name = m.defaultNameLocked(append([]*macro.Group{group}, groups...))
	}
	mac := macro.New(name)
	group.Append(mac)
	m.recording = mac
	m.insertOffset = -1
	m.mu.Unlock()
	m.recorder.Reset()

	m.setMode(RecordingNewMacro)
	m.logger.Info("Recording new macro %q", name)
	return mac, nil
}

// StartRecordingInsert records new commands into mac, inserted after the
// given command or at the beginning when after is nil.
func (m *Manager) StartRecordingInsert(mac *macro.Macro, after *macro.Command) error {
	offset := 0
	if after != nil {
		i := mac.IndexOf(after)
		if i < 0 {
			return fmt.Errorf("%s: %w", after, ErrNotInMacro)
		}
		offset = i + 1
	}

	m.mu.Lock()
	if m.mode != Off {
		mode := m.mode
		m.mu.Unlock()
		return fmt.Errorf("cannot record while %s: %w", mode, ErrBusy)
	}
	m.recording = mac
	m.insertOffset = offset
	m.mu.Unlock()
	m.recorder.Reset()

	m.setMode(RecordingInsertCommands)
	return nil
}

// StopRecording ends recording and returns the macro that was recorded
// into.
func (m *Manager) StopRecording() (*macro.Macro, error) {
	m.mu.Lock()
	if m.mode != RecordingNewMacro && m.mode != RecordingInsertCommands {
		m.mu.Unlock()
		return nil, ErrNotRecording
	}
	mac := m.recording
	m.recording = nil
	m.insertOffset = -1
	m.mu.Unlock()
	m.recorder.Reset()

	if m.helper != nil {
		m.helper.MacroWasModified(mac)
	}
	m.setMode(Off)
	m.logger.Info("Stopped recording macro %q with %d commands", mac.Name(), mac.Len())
	return mac, nil
}

// Record implements capture.Sink.
func (m *Manager) Record(cmd *macro.Command) {
	m.AddCommand(cmd)
}

// AddCommand adds cmd to the macro being recorded. It returns false when
// nothing is being recorded.
func (m *Manager) AddCommand(cmd *macro.Command) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.mode {
	case RecordingNewMacro:
		m.recording.Append(cmd)
		return true
	case RecordingInsertCommands:
		if err := m.recording.Insert(m.insertOffset, cmd); err != nil {
			m.logger.Error("Unable to insert recorded command: %v", err)
			return false
		}
		m.insertOffset++
		return true
	default:
		return false
	}
}

// RunMacro runs mac with the current options. startAt and stopAfter may be
// nil. When looping is enabled the macro is repeated, with the helper
// resetting program state between passes, until a pass fails or the run is
// stopped. RunMacro returns the macro of the last pass, which may differ
// from mac after a reset.
func (m *Manager) RunMacro(ctx context.Context, mac *macro.Macro, startAt, stopAfter *macro.Command) (*macro.Macro, error) {
	if mac.Len() == 0 {
		return mac, ErrEmptyMacro
	}
	m.mu.Lock()
	if m.mode != Off {
		mode := m.mode
		m.mu.Unlock()
		return mac, fmt.Errorf("cannot run while %s: %w", mode, ErrBusy)
	}
	m.mode = Running
	opts := m.options
	m.mu.Unlock()
	m.publisher.Publish(notify.Event{Topic: notify.TopicMode, Macro: mac.ID(), Index: -1, Payload: Running})
	m.stopRequested.Store(false)
	defer m.setMode(Off)

	opts.StartAt = startAt
	opts.StopAfter = stopAfter
	log := m.logger.WithField("macro", mac.Name())

	for {
		if m.stopRequested.Load() {
			return mac, playback.ErrStoppedByUser
		}
		m.monitor.SetMode(monitor.Run)
		if m.helper != nil {
			m.helper.ExecutionStarting(mac, opts)
		}
		err := m.engine.Run(ctx, mac, opts)
		if m.helper != nil {
			m.helper.ExecutionEnding(mac, opts)
		}
		m.monitor.SetMode(monitor.Stop)

		if err != nil {
			log.Info("Macro done: %v", err)
			return mac, err
		}
		if m.stopRequested.Load() || ctx.Err() != nil {
			return mac, playback.ErrStoppedByUser
		}
		if !opts.Looping {
			return mac, nil
		}
		if m.helper != nil {
			next, err := m.helper.ResetMacro(ctx, mac)
			if err != nil {
				return mac, err
			}
			if next == nil {
				return mac, nil
			}
			mac = next
		}
		opts.StartAt = nil
	}
}

// Stop stops a running macro after its current command.
func (m *Manager) Stop() {
	m.stopRequested.Store(true)
	m.monitor.SetMode(monitor.Stop)
}

// PauseContinue pauses a running macro or continues a paused one.
func (m *Manager) PauseContinue() monitor.Mode {
	return m.monitor.TogglePause()
}

// MacroForShortcut returns the first macro bound to key across groups.
func MacroForShortcut(groups []*macro.Group, key macro.ShortcutKey) *macro.Macro {
	for _, g := range groups {
		if g == nil {
			continue
		}
		if mac := g.ByShortcut(key); mac != nil {
			return mac
		}
	}
	return nil
}

// RunShortcut runs the macro bound to key. It reports whether a macro was
// found.
func (m *Manager) RunShortcut(ctx context.Context, groups []*macro.Group, key macro.ShortcutKey) (bool, error) {
	if key == macro.KeyNone {
		return false, nil
	}
	mac := MacroForShortcut(groups, key)
	if mac == nil {
		return false, nil
	}
	_, err := m.RunMacro(ctx, mac, nil, nil)
	return true, err
}

// DefaultMacroName returns "Macro N" for the lowest N not used in groups.
// Once a name has been handed out, lower numbers are not offered again.
func (m *Manager) DefaultMacroName(groups []*macro.Group) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaultNameLocked(groups)
}

func (m *Manager) defaultNameLocked(groups []*macro.Group) string {
	for i := m.nameIndex; ; i++ {
		name := "Macro " + strconv.Itoa(i)
		used := false
		for _, g := range groups {
			if g != nil && g.ByName(name) != nil {
				used = true
				break
			}
		}
		if !used {
			m.nameIndex = i
			return name
		}
	}
}

// NewCustomCommand creates a custom operation command with default
// parameters.
func (m *Manager) NewCustomCommand(operation string) (*macro.Command, error) {
	cmd, err := m.registry.NewCommand(operation)
	if err != nil {
		m.logger.Error("%v", err)
	}
	return cmd, err
}
