package control

import (
	"fmt"

	"github.com/dshills/uimacro/internal/macro"
)

// Handler pairs the capture and replay sides of one control type. Capture
// produces values in Schema order and Replay consumes parameters in the same
// order, so a captured command always replays into the same native change.
type Handler struct {
	Type    macro.ControlType
	Schema  []macro.ParamSpec
	Capture func(n Notification) []macro.Value
	Replay  func(c Control, params []*macro.Parameter) error
}

var (
	toggleSchema = []macro.ParamSpec{
		{Name: "On/Off", DataType: macro.DataBoolean, Default: macro.Bool(true)},
	}
	itemSchema = []macro.ParamSpec{
		{Name: "Select item with name", DataType: macro.DataString, Default: macro.String("")},
		{Name: "Select item at index", DataType: macro.DataInteger, Default: macro.Int(0)},
	}
	tabSchema = []macro.ParamSpec{
		{Name: "Select tab with name", DataType: macro.DataString, Default: macro.String("")},
		{Name: "Select tab at index", DataType: macro.DataInteger, Default: macro.Int(0)},
	}
)

func noneSchema(name string) []macro.ParamSpec {
	return []macro.ParamSpec{{Name: name, DataType: macro.DataNone}}
}

// handlers is indexed by control type. Every type except ControlInvalid
// has an entry.
var handlers = [macro.NumControlTypes]*Handler{
	macro.ControlAction: {
		Schema:  []macro.ParamSpec{{Name: "On/Off", DataType: macro.DataBoolean, Default: macro.Bool(false)}},
		Capture: captureChecked,
		// a non-checkable action is always triggered
		Replay: replayClick,
	},
	macro.ControlActionCheckable: {Schema: toggleSchema, Capture: captureChecked, Replay: replayToggle},
	macro.ControlActionGroup: {
		Schema: []macro.ParamSpec{
			{Name: "Select name", DataType: macro.DataString, Default: macro.String("")},
			{Name: "Select index", DataType: macro.DataInteger, Default: macro.Int(1)},
		},
		Capture: captureItem,
		Replay:  replaySelect(false),
	},
	macro.ControlButtonGroup:         {Schema: itemSchema, Capture: captureItem, Replay: replaySelect(false)},
	macro.ControlCheckBox:            {Schema: toggleSchema, Capture: captureChecked, Replay: replayToggle},
	macro.ControlComboBox:            {Schema: itemSchema, Capture: captureItem, Replay: replaySelect(false)},
	macro.ControlDoubleSpinBox:       {Schema: []macro.ParamSpec{{Name: "New value", DataType: macro.DataFloat, Default: macro.Float(0)}}, Capture: captureFloat, Replay: replayFloat},
	macro.ControlLineEdit:            {Schema: []macro.ParamSpec{{Name: "New text", DataType: macro.DataString, Default: macro.String("")}}, Capture: captureText, Replay: replayText},
	macro.ControlListWidget:          {Schema: itemSchema, Capture: captureItem, Replay: replaySelect(false)},
	macro.ControlDataAction:          {Schema: []macro.ParamSpec{{Name: "Data Value", DataType: macro.DataString, Default: macro.String("")}}, Capture: captureText, Replay: replayData},
	macro.ControlMenu:                {Schema: itemSchema, Capture: captureItem, Replay: replaySelect(false)},
	macro.ControlPushButton:          {Schema: noneSchema("Click button"), Capture: captureNone, Replay: replayClick},
	macro.ControlPushButtonCheckable: {Schema: toggleSchema, Capture: captureChecked, Replay: replayToggle},
	macro.ControlRadioButton:         {Schema: noneSchema("Select button"), Capture: captureNone, Replay: replayClick},
	macro.ControlSlider:              {Schema: []macro.ParamSpec{{Name: "Move slider to", DataType: macro.DataInteger, Default: macro.Int(0)}}, Capture: captureInt, Replay: replayInt},
	macro.ControlSpinBox:             {Schema: []macro.ParamSpec{{Name: "Enter value", DataType: macro.DataInteger, Default: macro.Int(0)}}, Capture: captureInt, Replay: replayInt},
	macro.ControlTabBar:              {Schema: tabSchema, Capture: captureItem, Replay: replaySelect(true)},
	macro.ControlTabWidget:           {Schema: tabSchema, Capture: captureItem, Replay: replaySelect(true)},
	macro.ControlToolButton:          {Schema: noneSchema("Select button"), Capture: captureNone, Replay: replayClick},
	macro.ControlToolButtonCheckable: {Schema: toggleSchema, Capture: captureChecked, Replay: replayToggle},
}

func init() {
	for i, h := range handlers {
		if h != nil {
			h.Type = macro.ControlType(i)
		}
	}
}

// Lookup returns the handler for a control type.
func Lookup(t macro.ControlType) (*Handler, bool) {
	if int(t) >= len(handlers) || handlers[t] == nil {
		return nil, false
	}
	return handlers[t], true
}

// Handlers returns every handler ordered by control type.
func Handlers() []*Handler {
	out := make([]*Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// Apply replays params into c using the handler for t. Parameters are
// checked against the schema first; a mismatch returns ErrDispatchMismatch.
func Apply(t macro.ControlType, c Control, params []*macro.Parameter) error {
	h, ok := Lookup(t)
	if !ok {
		return &ReplayError{Control: c.Name(), Type: t, Err: ErrUnsupportedType}
	}
	if err := macro.ValidateParameters(h.Schema, params); err != nil {
		return &ReplayError{Control: c.Name(), Type: t, Detail: err.Error(), Err: ErrDispatchMismatch}
	}
	return h.Replay(c, params)
}

// NewParameters builds the parameters of a command from captured values,
// following the handler's schema.
func (h *Handler) NewParameters(values []macro.Value) ([]*macro.Parameter, error) {
	if len(values) != len(h.Schema) {
		return nil, fmt.Errorf("%s captured %d values for %d parameters: %w",
			h.Type, len(values), len(h.Schema), ErrDispatchMismatch)
	}
	params := make([]*macro.Parameter, len(values))
	for i, spec := range h.Schema {
		p, err := macro.NewParameter(spec.DataType, spec.Name, values[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", h.Type, err)
		}
		params[i] = p
	}
	return params, nil
}

func captureChecked(n Notification) []macro.Value {
	return []macro.Value{macro.Bool(n.Checked)}
}

func captureItem(n Notification) []macro.Value {
	return []macro.Value{macro.String(n.Text), macro.Int(n.Index)}
}

func captureFloat(n Notification) []macro.Value {
	return []macro.Value{macro.Float(n.Float)}
}

func captureText(n Notification) []macro.Value {
	return []macro.Value{macro.String(n.Text)}
}

func captureInt(n Notification) []macro.Value {
	return []macro.Value{macro.Int(n.Int)}
}

func captureNone(Notification) []macro.Value {
	return []macro.Value{macro.None{}}
}

func missing(c Control, capability string) error {
	return &ReplayError{
		Control: c.Name(),
		Type:    c.Type(),
		Detail:  "not a " + capability,
		Err:     ErrCapabilityMissing,
	}
}

func replayClick(c Control, _ []*macro.Parameter) error {
	b, ok := c.(Button)
	if !ok {
		return missing(c, "button")
	}
	b.Click()
	return nil
}

func replayToggle(c Control, params []*macro.Parameter) error {
	t, ok := c.(Toggle)
	if !ok {
		return missing(c, "toggle")
	}
	on := macro.AsBool(params[0].Value())
	t.SetChecked(on)
	t.EmitToggled(on)
	return nil
}

func replayInt(c Control, params []*macro.Parameter) error {
	in, ok := c.(IntInput)
	if !ok {
		return missing(c, "integer input")
	}
	v := macro.AsInt(params[0].Value())
	in.SetInt(v)
	in.EmitInt(v)
	return nil
}

func replayFloat(c Control, params []*macro.Parameter) error {
	in, ok := c.(FloatInput)
	if !ok {
		return missing(c, "float input")
	}
	v := macro.AsFloat(params[0].Value())
	in.SetFloat(v)
	in.EmitFloat(v)
	return nil
}

func replayText(c Control, params []*macro.Parameter) error {
	in, ok := c.(TextInput)
	if !ok {
		return missing(c, "text input")
	}
	s := macro.AsString(params[0].Value())
	in.SetText(s)
	in.EmitText(s)
	return nil
}

func replayData(c Control, params []*macro.Parameter) error {
	in, ok := c.(DataInput)
	if !ok {
		return missing(c, "data action")
	}
	s := macro.AsString(params[0].Value())
	in.SetData(s)
	in.EmitData(s)
	return nil
}

// replaySelect selects by item text first and falls back to the recorded
// index. Tabs must also be enabled.
func replaySelect(requireEnabled bool) func(Control, []*macro.Parameter) error {
	return func(c Control, params []*macro.Parameter) error {
		s, ok := c.(Selector)
		if !ok {
			return missing(c, "selector")
		}
		text := macro.AsString(params[0].Value())
		index := int(macro.AsInt(params[1].Value()))

		found := -1
		if text != "" {
			for i := 0; i < s.Count(); i++ {
				if s.ItemText(i) == text {
					found = i
					break
				}
			}
		}
		if found < 0 && index >= 0 && index < s.Count() {
			found = index
		}
		if found < 0 {
			return &ReplayError{
				Control: c.Name(),
				Type:    c.Type(),
				Detail:  fmt.Sprintf("unable to find item with text %q or index=%d", text, index),
				Err:     ErrItemNotFound,
			}
		}
		if requireEnabled && !s.ItemEnabled(found) {
			return &ReplayError{
				Control: c.Name(),
				Type:    c.Type(),
				Detail:  fmt.Sprintf("tab %d with text %q is disabled", found+1, s.ItemText(found)),
				Err:     ErrItemDisabled,
			}
		}
		s.SetCurrentIndex(found)
		s.EmitSelected(found)
		return nil
	}
}

// ReplayPointer rescales each recorded point to the target's current size
// and delivers it as a pointer event. after, when not nil, runs after each
// delivered event so the host can process pending events.
func ReplayPointer(c Control, rec *macro.PointerEventRecord, after func()) error {
	target, ok := c.(PointerTarget)
	if !ok {
		return missing(c, "pointer target")
	}
	w, h := target.Size()
	for _, p := range rec.RescaledPoints(w, h) {
		target.HandlePointer(PointerEvent{
			Kind:      rec.Kind,
			X:         p.X,
			Y:         p.Y,
			Button:    rec.Button,
			Buttons:   rec.ButtonMask,
			Modifiers: rec.ModifierMask,
		})
		if after != nil {
			after()
		}
	}
	return nil
}
