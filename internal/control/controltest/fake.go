// Package controltest provides an in-memory control for tests.
package controltest

import (
	"sync"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/macro"
)

// Emission is one notification emitted during replay.
type Emission struct {
	Kind  string
	Value any
}

// Control is a fake implementing every capability in package control. It
// records emissions and lets tests fire notifications and pointer events
// as if the user had interacted with it.
type Control struct {
	mu sync.Mutex

	name      string
	typ       macro.ControlType
	blocked   bool
	checkable bool
	exclusive bool

	Items    []string
	Disabled map[int]bool
	Width    int
	Height   int

	checked bool
	index   int
	intVal  int64
	float   float64
	text    string
	data    string
	clicks  int

	emitted  []Emission
	pointers []control.PointerEvent

	changeSubs  map[int]func(control.Notification)
	pointerSubs map[int]func(control.PointerEvent)
	nextSub     int
}

// New creates a fake control.
func New(name string, t macro.ControlType) *Control {
	return &Control{
		name:        name,
		typ:         t,
		index:       -1,
		Disabled:    map[int]bool{},
		changeSubs:  map[int]func(control.Notification){},
		pointerSubs: map[int]func(control.PointerEvent){},
	}
}

// Name implements control.Control.
func (c *Control) Name() string { return c.name }

// Type implements control.Control.
func (c *Control) Type() macro.ControlType { return c.typ }

// NotificationsBlocked implements control.Control.
func (c *Control) NotificationsBlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocked
}

// SetBlocked changes the notifications-blocked state.
func (c *Control) SetBlocked(b bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocked = b
}

// SetCheckable configures checkable refinement.
func (c *Control) SetCheckable(checkable, exclusive bool) {
	c.checkable = checkable
	c.exclusive = exclusive
}

// Checkable implements control.Checkable.
func (c *Control) Checkable() bool { return c.checkable }

// InExclusiveGroup implements control.Checkable.
func (c *Control) InExclusiveGroup() bool { return c.exclusive }

func (c *Control) emit(kind string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitted = append(c.emitted, Emission{Kind: kind, Value: v})
}

// Emitted returns every emission in order.
func (c *Control) Emitted() []Emission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Emission(nil), c.emitted...)
}

// Click implements control.Button.
func (c *Control) Click() {
	c.mu.Lock()
	c.clicks++
	c.mu.Unlock()
	c.emit("clicked", nil)
}

// Clicks returns how often Click was called.
func (c *Control) Clicks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clicks
}

// SetChecked implements control.Toggle.
func (c *Control) SetChecked(on bool) { c.checked = on }

// EmitToggled implements control.Toggle.
func (c *Control) EmitToggled(on bool) { c.emit("toggled", on) }

// Checked returns the checked state.
func (c *Control) Checked() bool { return c.checked }

// Count implements control.Selector.
func (c *Control) Count() int { return len(c.Items) }

// ItemText implements control.Selector.
func (c *Control) ItemText(i int) string {
	if i < 0 || i >= len(c.Items) {
		return ""
	}
	return c.Items[i]
}

// ItemEnabled implements control.Selector.
func (c *Control) ItemEnabled(i int) bool { return !c.Disabled[i] }

// SetCurrentIndex implements control.Selector.
func (c *Control) SetCurrentIndex(i int) { c.index = i }

// EmitSelected implements control.Selector.
func (c *Control) EmitSelected(i int) { c.emit("selected", i) }

// CurrentIndex returns the selected index, or -1.
func (c *Control) CurrentIndex() int { return c.index }

// SetInt implements control.IntInput.
func (c *Control) SetInt(v int64) { c.intVal = v }

// EmitInt implements control.IntInput.
func (c *Control) EmitInt(v int64) { c.emit("int", v) }

// Int returns the integer value.
func (c *Control) Int() int64 { return c.intVal }

// SetFloat implements control.FloatInput.
func (c *Control) SetFloat(v float64) { c.float = v }

// EmitFloat implements control.FloatInput.
func (c *Control) EmitFloat(v float64) { c.emit("float", v) }

// Float returns the float value.
func (c *Control) Float() float64 { return c.float }

// SetText implements control.TextInput.
func (c *Control) SetText(s string) { c.text = s }

// EmitText implements control.TextInput.
func (c *Control) EmitText(s string) { c.emit("text", s) }

// Text returns the text value.
func (c *Control) Text() string { return c.text }

// SetData implements control.DataInput.
func (c *Control) SetData(s string) { c.data = s }

// EmitData implements control.DataInput.
func (c *Control) EmitData(s string) { c.emit("data", s) }

// Data returns the data value.
func (c *Control) Data() string { return c.data }

// Size implements control.PointerTarget.
func (c *Control) Size() (int, int) { return c.Width, c.Height }

// HandlePointer implements control.PointerTarget.
func (c *Control) HandlePointer(ev control.PointerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pointers = append(c.pointers, ev)
}

// Pointers returns the pointer events delivered by playback.
func (c *Control) Pointers() []control.PointerEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]control.PointerEvent(nil), c.pointers...)
}

// OnChange implements control.Notifier.
func (c *Control) OnChange(fn func(control.Notification)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.changeSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.changeSubs, id)
	}
}

// OnPointer implements control.PointerSource.
func (c *Control) OnPointer(fn func(control.PointerEvent)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.pointerSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.pointerSubs, id)
	}
}

// Subscribers returns the number of active change subscriptions.
func (c *Control) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.changeSubs)
}

// Change fires a value-change notification, as if the user edited the
// control. Blocked controls stay silent.
func (c *Control) Change(n control.Notification) {
	c.mu.Lock()
	if c.blocked {
		c.mu.Unlock()
		return
	}
	subs := make([]func(control.Notification), 0, len(c.changeSubs))
	for _, fn := range c.changeSubs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(n)
	}
}

// Pointer fires a pointer event, as if the user used the pointer.
func (c *Control) Pointer(ev control.PointerEvent) {
	c.mu.Lock()
	subs := make([]func(control.PointerEvent), 0, len(c.pointerSubs))
	for _, fn := range c.pointerSubs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}
