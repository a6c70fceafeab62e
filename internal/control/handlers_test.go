package control_test

import (
	"errors"
	"testing"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/control/controltest"
	"github.com/dshills/uimacro/internal/macro"
)

func TestHandlerTableExhaustive(t *testing.T) {
	for _, ct := range macro.AllControlTypes() {
		h, ok := control.Lookup(ct)
		if !ok {
			t.Errorf("no handler for %s", ct)
			continue
		}
		if h.Type != ct {
			t.Errorf("handler for %s reports type %s", ct, h.Type)
		}
		if len(h.Schema) == 0 || h.Capture == nil || h.Replay == nil {
			t.Errorf("handler for %s is incomplete", ct)
		}
	}
	if _, ok := control.Lookup(macro.ControlInvalid); ok {
		t.Error("ControlInvalid has a handler")
	}
	if got := len(control.Handlers()); got != len(macro.AllControlTypes()) {
		t.Errorf("Handlers() has %d entries, want %d", got, len(macro.AllControlTypes()))
	}
}

// Capturing a notification and replaying the resulting parameters must
// produce the same native change.
func TestCaptureReplaySymmetry(t *testing.T) {
	items := []string{"Alpha", "Beta", "Gamma"}
	tests := []struct {
		ct   macro.ControlType
		in   control.Notification
		want controltest.Emission
	}{
		{macro.ControlAction, control.Notification{}, controltest.Emission{Kind: "clicked"}},
		{macro.ControlActionCheckable, control.Notification{Checked: true}, controltest.Emission{Kind: "toggled", Value: true}},
		{macro.ControlActionGroup, control.Notification{Text: "Beta", Index: 1}, controltest.Emission{Kind: "selected", Value: 1}},
		{macro.ControlButtonGroup, control.Notification{Text: "Gamma", Index: 2}, controltest.Emission{Kind: "selected", Value: 2}},
		{macro.ControlCheckBox, control.Notification{Checked: false}, controltest.Emission{Kind: "toggled", Value: false}},
		{macro.ControlComboBox, control.Notification{Text: "Alpha", Index: 0}, controltest.Emission{Kind: "selected", Value: 0}},
		{macro.ControlDoubleSpinBox, control.Notification{Float: 2.5}, controltest.Emission{Kind: "float", Value: 2.5}},
		{macro.ControlLineEdit, control.Notification{Text: "hello"}, controltest.Emission{Kind: "text", Value: "hello"}},
		{macro.ControlListWidget, control.Notification{Text: "Beta", Index: 1}, controltest.Emission{Kind: "selected", Value: 1}},
		{macro.ControlDataAction, control.Notification{Text: "payload"}, controltest.Emission{Kind: "data", Value: "payload"}},
		{macro.ControlMenu, control.Notification{Text: "Gamma", Index: 2}, controltest.Emission{Kind: "selected", Value: 2}},
		{macro.ControlPushButton, control.Notification{}, controltest.Emission{Kind: "clicked"}},
		{macro.ControlPushButtonCheckable, control.Notification{Checked: true}, controltest.Emission{Kind: "toggled", Value: true}},
		{macro.ControlRadioButton, control.Notification{Checked: true}, controltest.Emission{Kind: "clicked"}},
		{macro.ControlSlider, control.Notification{Int: 42}, controltest.Emission{Kind: "int", Value: int64(42)}},
		{macro.ControlSpinBox, control.Notification{Int: -7}, controltest.Emission{Kind: "int", Value: int64(-7)}},
		{macro.ControlTabBar, control.Notification{Text: "Beta", Index: 1}, controltest.Emission{Kind: "selected", Value: 1}},
		{macro.ControlTabWidget, control.Notification{Text: "Alpha", Index: 0}, controltest.Emission{Kind: "selected", Value: 0}},
		{macro.ControlToolButton, control.Notification{}, controltest.Emission{Kind: "clicked"}},
		{macro.ControlToolButtonCheckable, control.Notification{Checked: true}, controltest.Emission{Kind: "toggled", Value: true}},
	}

	if len(tests) != len(macro.AllControlTypes()) {
		t.Fatalf("table covers %d types, want %d", len(tests), len(macro.AllControlTypes()))
	}

	for _, tt := range tests {
		t.Run(tt.ct.String(), func(t *testing.T) {
			h, ok := control.Lookup(tt.ct)
			if !ok {
				t.Fatalf("no handler")
			}
			params, err := h.NewParameters(h.Capture(tt.in))
			if err != nil {
				t.Fatalf("NewParameters: %v", err)
			}

			target := controltest.New("target", tt.ct)
			target.Items = items
			if err := control.Apply(tt.ct, target, params); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			got := target.Emitted()
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("emitted %v, want [%v]", got, tt.want)
			}
		})
	}
}

func TestSelectorFallsBackToIndex(t *testing.T) {
	c := controltest.New("layers", macro.ControlComboBox)
	c.Items = []string{"a", "b", "c"}
	h, _ := control.Lookup(macro.ControlComboBox)

	params, _ := h.NewParameters([]macro.Value{macro.String("renamed"), macro.Int(2)})
	if err := control.Apply(macro.ControlComboBox, c, params); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if c.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex() = %d, want 2", c.CurrentIndex())
	}

	params, _ = h.NewParameters([]macro.Value{macro.String("renamed"), macro.Int(9)})
	err := control.Apply(macro.ControlComboBox, c, params)
	if !errors.Is(err, control.ErrItemNotFound) {
		t.Errorf("error = %v, want ErrItemNotFound", err)
	}
}

func TestDisabledTabRejected(t *testing.T) {
	c := controltest.New("tabs", macro.ControlTabBar)
	c.Items = []string{"Overlay", "Volume"}
	c.Disabled[1] = true
	h, _ := control.Lookup(macro.ControlTabBar)

	params, _ := h.NewParameters([]macro.Value{macro.String("Volume"), macro.Int(1)})
	err := control.Apply(macro.ControlTabBar, c, params)
	if !errors.Is(err, control.ErrItemDisabled) {
		t.Errorf("error = %v, want ErrItemDisabled", err)
	}
	if len(c.Emitted()) != 0 {
		t.Error("disabled tab was selected")
	}
}

func TestApplyDispatchMismatch(t *testing.T) {
	c := controltest.New("grid", macro.ControlCheckBox)
	params := []*macro.Parameter{macro.MustParameter(macro.DataInteger, "On/Off", macro.Int(1))}

	err := control.Apply(macro.ControlCheckBox, c, params)
	if !errors.Is(err, control.ErrDispatchMismatch) {
		t.Errorf("error = %v, want ErrDispatchMismatch", err)
	}
	var re *control.ReplayError
	if !errors.As(err, &re) || re.Control != "grid" {
		t.Errorf("ReplayError = %+v", re)
	}
}

type plainControl struct{ name string }

func (p plainControl) Name() string               { return p.name }
func (p plainControl) Type() macro.ControlType    { return macro.ControlSlider }
func (p plainControl) NotificationsBlocked() bool { return false }

func TestApplyCapabilityMissing(t *testing.T) {
	h, _ := control.Lookup(macro.ControlSlider)
	params := macro.ParametersFromSchema(h.Schema)

	err := control.Apply(macro.ControlSlider, plainControl{"slider"}, params)
	if !errors.Is(err, control.ErrCapabilityMissing) {
		t.Errorf("error = %v, want ErrCapabilityMissing", err)
	}
}

func TestResolveType(t *testing.T) {
	tests := []struct {
		base      macro.ControlType
		checkable bool
		exclusive bool
		want      macro.ControlType
	}{
		{macro.ControlAction, false, false, macro.ControlAction},
		{macro.ControlAction, true, false, macro.ControlActionCheckable},
		{macro.ControlAction, true, true, macro.ControlAction},
		{macro.ControlPushButton, true, false, macro.ControlPushButtonCheckable},
		{macro.ControlToolButton, true, false, macro.ControlToolButtonCheckable},
		{macro.ControlCheckBox, true, false, macro.ControlCheckBox},
	}
	for _, tt := range tests {
		c := controltest.New("x", tt.base)
		c.SetCheckable(tt.checkable, tt.exclusive)
		if got := control.ResolveType(c); got != tt.want {
			t.Errorf("ResolveType(%s, checkable=%v, exclusive=%v) = %s, want %s",
				tt.base, tt.checkable, tt.exclusive, got, tt.want)
		}
	}
}

func TestReplayPointerRescales(t *testing.T) {
	c := controltest.New("view", macro.ControlInvalid)
	c.Width, c.Height = 200, 100

	rec := macro.NewPointerEventRecord(macro.PointerMove, 1, 1, 2, 100, 50)
	rec.AddPoint(10, 10)
	rec.AddPoint(50, 25)

	var yields int
	if err := control.ReplayPointer(c, rec, func() { yields++ }); err != nil {
		t.Fatal(err)
	}
	got := c.Pointers()
	want := []control.PointerEvent{
		{Kind: macro.PointerMove, X: 20, Y: 20, Button: 1, Buttons: 1, Modifiers: 2},
		{Kind: macro.PointerMove, X: 100, Y: 50, Button: 1, Buttons: 1, Modifiers: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("delivered %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if yields != 2 {
		t.Errorf("yielded %d times, want 2", yields)
	}
}

func TestTreesSearchOrder(t *testing.T) {
	mainWindow := control.Map{}
	dialog := control.Map{}
	a := controltest.New("shared", macro.ControlPushButton)
	b := controltest.New("shared", macro.ControlPushButton)
	d := controltest.New("dialogOnly", macro.ControlPushButton)
	mainWindow.Add(a)
	dialog.Add(b)
	dialog.Add(d)

	trees := control.Trees{mainWindow, nil, dialog}
	if trees.FindByName("shared") != control.Control(a) {
		t.Error("main window not searched first")
	}
	if trees.FindByName("dialogOnly") != control.Control(d) {
		t.Error("other parent not searched")
	}
	if trees.FindByName("missing") != nil {
		t.Error("found a missing control")
	}
}
