// Package control defines how macros see the host user interface.
//
// The host owns the real control tree; this package only describes the
// capabilities that capture and playback need. Each capability is a small
// interface, and the handler table in handlers.go maps every control type
// to the capability it captures from and replays into.
package control

import "github.com/dshills/uimacro/internal/macro"

// Control is a named control in the host's control tree.
type Control interface {
	// Name is the stable object name used to find the control again.
	Name() string
	// Type is the base control type. See ResolveType for checkable
	// refinement.
	Type() macro.ControlType
	// NotificationsBlocked reports whether the control currently
	// suppresses its change notifications.
	NotificationsBlocked() bool
}

// Checkable is implemented by actions and buttons that may be checkable.
type Checkable interface {
	Checkable() bool
	// InExclusiveGroup reports membership of a group where exactly one
	// member is checked; such members behave as plain buttons.
	InExclusiveGroup() bool
}

// Button is a control that is clicked or triggered.
type Button interface {
	Control
	// Click activates the control and emits its clicked notification.
	Click()
}

// Toggle is a control with a checked state.
type Toggle interface {
	Control
	SetChecked(on bool)
	EmitToggled(on bool)
}

// Selector is a control that selects one of several items: combo boxes,
// lists, menus, action and button groups, tab bars.
type Selector interface {
	Control
	Count() int
	ItemText(index int) string
	ItemEnabled(index int) bool
	SetCurrentIndex(index int)
	EmitSelected(index int)
}

// IntInput is a control holding an integer, such as a slider or spin box.
type IntInput interface {
	Control
	SetInt(v int64)
	EmitInt(v int64)
}

// FloatInput is a control holding a floating point value.
type FloatInput interface {
	Control
	SetFloat(v float64)
	EmitFloat(v float64)
}

// TextInput is a control holding free text.
type TextInput interface {
	Control
	SetText(s string)
	EmitText(s string)
}

// DataInput is a host-defined action that carries an opaque data value.
type DataInput interface {
	Control
	SetData(s string)
	EmitData(s string)
}

// PointerEvent is a pointer event in coordinates local to a control.
type PointerEvent struct {
	Kind      macro.PointerEventKind
	X         int
	Y         int
	Button    uint32
	Buttons   uint32
	Modifiers uint32
}

// PointerTarget is a control that accepts synthesized pointer events.
type PointerTarget interface {
	Control
	// Size is the current size of the control's surface.
	Size() (width, height int)
	// HandlePointer delivers ev directly to the control's pointer
	// handler, bypassing normal event routing.
	HandlePointer(ev PointerEvent)
}

// Notification describes a native value change. Only the fields relevant to
// the control type are set.
type Notification struct {
	Checked bool
	Index   int
	Text    string
	Int     int64
	Float   float64
}

// Notifier is implemented by controls whose value changes can be observed.
type Notifier interface {
	OnChange(fn func(Notification)) (cancel func())
}

// PointerSource is implemented by controls whose pointer events can be
// observed for capture.
type PointerSource interface {
	OnPointer(fn func(PointerEvent)) (cancel func())
}

// Locatable is implemented by controls that know where they are on screen,
// used to move the playback indicator.
type Locatable interface {
	ScreenCenter() (x, y int)
}

// ResolveType returns the control type used for recording c. Actions, push
// buttons and tool buttons that are checkable and not in an exclusive group
// become their _CHECKABLE variants.
func ResolveType(c Control) macro.ControlType {
	t := c.Type()
	ch, ok := c.(Checkable)
	if !ok || !ch.Checkable() || ch.InExclusiveGroup() {
		return t
	}
	switch t {
	case macro.ControlAction:
		return macro.ControlActionCheckable
	case macro.ControlPushButton:
		return macro.ControlPushButtonCheckable
	case macro.ControlToolButton:
		return macro.ControlToolButtonCheckable
	default:
		return t
	}
}

// Tree finds controls by name.
type Tree interface {
	// FindByName returns the control with the name, or nil.
	FindByName(name string) Control
}

// Trees searches several roots in order: the main window first, then any
// other parents such as detached dialogs.
type Trees []Tree

// FindByName returns the first match across all trees, or nil.
func (ts Trees) FindByName(name string) Control {
	for _, t := range ts {
		if t == nil {
			continue
		}
		if c := t.FindByName(name); c != nil {
			return c
		}
	}
	return nil
}

// Map is a Tree backed by a map, convenient for hosts that keep a flat
// registry of named controls.
type Map map[string]Control

// FindByName implements Tree.
func (m Map) FindByName(name string) Control {
	if c, ok := m[name]; ok {
		return c
	}
	return nil
}

// Add registers c under its name.
func (m Map) Add(c Control) {
	m[c.Name()] = c
}
