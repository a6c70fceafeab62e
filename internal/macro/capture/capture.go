// Package capture turns live control notifications into macro commands
// while a macro is being recorded.
package capture

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro"
)

// Binding errors.
var (
	ErrEmptyName       = errors.New("control has no name")
	ErrDuplicateName   = errors.New("control name is already bound")
	ErrUnsupportedType = errors.New("control type cannot be recorded")
	ErrNotBound        = errors.New("control is not bound")
	ErrNoPointerEvents = errors.New("control does not report pointer events")
)

// ModeSource reports whether commands should be recorded right now.
type ModeSource interface {
	IsRecording() bool
}

// ModeFunc adapts a function to ModeSource.
type ModeFunc func() bool

// IsRecording implements ModeSource.
func (f ModeFunc) IsRecording() bool { return f() }

// Sink receives captured commands.
type Sink interface {
	Record(cmd *macro.Command)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(cmd *macro.Command)

// Record implements Sink.
func (f SinkFunc) Record(cmd *macro.Command) { f(cmd) }

type binding struct {
	control     control.Control
	controlType macro.ControlType
	handler     *control.Handler
	descriptive string
	toolTip     string
	pointer     bool
	cancels     []func()
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger used for binding problems.
func WithLogger(l *logging.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithPointerMoveMerge merges consecutive drag moves on the same control
// into the trajectory of one command.
func WithPointerMoveMerge(enabled bool) Option {
	return func(r *Recorder) { r.mergeMoves = enabled }
}

// Recorder holds the bindings to live controls.
type Recorder struct {
	mu         sync.Mutex
	mode       ModeSource
	sink       Sink
	logger     *logging.Logger
	mergeMoves bool
	bindings   map[string]*binding

	// lastMove is the most recent pointer move command, a merge target.
	lastMove *macro.Command
}

// New creates a Recorder that asks mode whether to record and delivers
// commands to sink.
func New(mode ModeSource, sink Sink, opts ...Option) *Recorder {
	r := &Recorder{
		mode:     mode,
		sink:     sink,
		bindings: make(map[string]*binding),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger).WithComponent("capture")
	return r
}

// Bind connects a control so that its value changes are recorded. The
// control must have a unique, non-empty name and a recordable type.
// Controls implementing control.Notifier are subscribed immediately;
// others can feed notifications through Notify.
func (r *Recorder) Bind(c control.Control, descriptiveName, toolTip string) error {
	b, err := r.newBinding(c, descriptiveName, toolTip)
	if err != nil {
		return err
	}
	t := control.ResolveType(c)
	h, ok := control.Lookup(t)
	if !ok {
		r.logger.Error("Control named %q has unsupported type %s", c.Name(), t)
		return fmt.Errorf("%q (%s): %w", c.Name(), t, ErrUnsupportedType)
	}
	b.controlType = t
	b.handler = h

	if err := r.add(b); err != nil {
		return err
	}
	if n, ok := c.(control.Notifier); ok {
		cancel := n.OnChange(func(ev control.Notification) {
			r.valueChanged(b, ev)
		})
		r.addCancel(b, cancel)
	}
	return nil
}

// BindPointer connects a control whose pointer events are recorded. The
// control must implement control.PointerSource.
func (r *Recorder) BindPointer(c control.Control, descriptiveName, toolTip string) error {
	src, ok := c.(control.PointerSource)
	if !ok {
		r.logger.Error("Control named %q does not report pointer events", c.Name())
		return fmt.Errorf("%q: %w", c.Name(), ErrNoPointerEvents)
	}
	b, err := r.newBinding(c, descriptiveName, toolTip)
	if err != nil {
		return err
	}
	b.controlType = c.Type()
	b.pointer = true

	if err := r.add(b); err != nil {
		return err
	}
	cancel := src.OnPointer(func(ev control.PointerEvent) {
		r.pointerEvent(b, ev)
	})
	r.addCancel(b, cancel)
	return nil
}

func (r *Recorder) newBinding(c control.Control, descriptiveName, toolTip string) (*binding, error) {
	if c == nil || c.Name() == "" {
		r.logger.Error("Control has no name and cannot be recorded (descriptive name %q)", descriptiveName)
		return nil, ErrEmptyName
	}
	if descriptiveName == "" {
		r.logger.Warn("Control named %q has no descriptive name", c.Name())
	}
	if toolTip == "" {
		r.logger.Warn("Control named %q has no tool tip", c.Name())
	}
	return &binding{
		control:     c,
		descriptive: descriptiveName,
		toolTip:     toolTip,
	}, nil
}

func (r *Recorder) add(b *binding) error {
	name := b.control.Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bindings[name]; exists {
		r.logger.Error("Control named %q is already bound", name)
		return fmt.Errorf("%q: %w", name, ErrDuplicateName)
	}
	r.bindings[name] = b
	return nil
}

func (r *Recorder) addCancel(b *binding, cancel func()) {
	if cancel == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b.cancels = append(b.cancels, cancel)
}

// Unbind disconnects the named control. Returns false if it was not bound.
func (r *Recorder) Unbind(name string) bool {
	r.mu.Lock()
	b, ok := r.bindings[name]
	if ok {
		delete(r.bindings, name)
		if r.lastMove != nil && r.lastMove.Name() == name {
			r.lastMove = nil
		}
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	for _, cancel := range b.cancels {
		cancel()
	}
	return true
}

// Reset forgets the pending pointer move so the next move starts a new
// command. Call it whenever a recording starts or stops.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.lastMove = nil
	r.mu.Unlock()
}

// BoundNames returns the names of all bound controls, sorted.
func (r *Recorder) BoundNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToolTip returns the tool tip registered for the named control.
func (r *Recorder) ToolTip(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[name]
	if !ok {
		return "", false
	}
	return b.toolTip, true
}

// DefaultCommand builds a command for the named control with every
// parameter set to its schema default.
func (r *Recorder) DefaultCommand(name string) (*macro.Command, error) {
	r.mu.Lock()
	b, ok := r.bindings[name]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotBound)
	}
	if b.pointer {
		return nil, fmt.Errorf("%q records pointer events: %w", name, ErrUnsupportedType)
	}
	cmd, err := macro.NewControlCommand(b.controlType, name, b.descriptive, b.toolTip)
	if err != nil {
		return nil, err
	}
	for _, p := range macro.ParametersFromSchema(b.handler.Schema) {
		cmd.AddParameter(p)
	}
	return cmd, nil
}

// Notify records a value change of the named control. Hosts whose
// controls do not implement control.Notifier call this from their change
// handlers.
func (r *Recorder) Notify(name string, n control.Notification) error {
	r.mu.Lock()
	b, ok := r.bindings[name]
	r.mu.Unlock()
	if !ok || b.pointer {
		return fmt.Errorf("%q: %w", name, ErrNotBound)
	}
	r.valueChanged(b, n)
	return nil
}

func (r *Recorder) recording() bool {
	return r.mode != nil && r.mode.IsRecording()
}

func (r *Recorder) valueChanged(b *binding, n control.Notification) {
	if !r.recording() {
		return
	}
	name := b.control.Name()
	cmd, err := macro.NewControlCommand(b.controlType, name, b.descriptive, b.toolTip)
	if err != nil {
		r.logger.Error("Unable to record %q: %v", name, err)
		return
	}
	params, err := b.handler.NewParameters(b.handler.Capture(n))
	if err != nil {
		r.logger.Error("Unable to record %q: %v", name, err)
		return
	}
	for _, p := range params {
		cmd.AddParameter(p)
	}

	r.mu.Lock()
	r.lastMove = nil
	r.mu.Unlock()
	r.sink.Record(cmd)
}

func (r *Recorder) pointerEvent(b *binding, ev control.PointerEvent) {
	if !r.recording() {
		return
	}
	// moves without a held button are hover noise
	if ev.Kind == macro.PointerMove && ev.Buttons == 0 {
		return
	}

	var w, h int
	if t, ok := b.control.(control.PointerTarget); ok {
		w, h = t.Size()
	}
	rec := macro.NewPointerEventRecord(ev.Kind, ev.Button, ev.Buttons, ev.Modifiers, w, h)
	rec.AddPoint(ev.X, ev.Y)

	name := b.control.Name()
	r.mu.Lock()
	if r.mergeMoves && r.lastMove != nil && r.lastMove.Name() == name &&
		r.lastMove.Pointer().SameStream(rec) {
		r.lastMove.Pointer().AddPoint(ev.X, ev.Y)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	cmd, err := macro.NewPointerCommand(b.controlType, name, b.descriptive, b.toolTip, rec)
	if err != nil {
		r.logger.Error("Unable to record pointer event on %q: %v", name, err)
		return
	}

	r.mu.Lock()
	if ev.Kind == macro.PointerMove {
		r.lastMove = cmd
	} else {
		r.lastMove = nil
	}
	r.mu.Unlock()
	r.sink.Record(cmd)
}
