package capture

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/control/controltest"
	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro"
)

type testSink struct {
	commands []*macro.Command
}

func (s *testSink) Record(cmd *macro.Command) { s.commands = append(s.commands, cmd) }

func newTestRecorder(recording *bool, opts ...Option) (*Recorder, *testSink) {
	sink := &testSink{}
	r := New(ModeFunc(func() bool { return *recording }), sink, opts...)
	return r, sink
}

func TestBindErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
	recording := true
	r, _ := newTestRecorder(&recording, WithLogger(logger))

	if err := r.Bind(controltest.New("", macro.ControlCheckBox), "Grid", "Show grid"); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name: err = %v, want ErrEmptyName", err)
	}
	if err := r.Bind(controltest.New("grid", macro.ControlCheckBox), "Grid", "Show grid"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := r.Bind(controltest.New("grid", macro.ControlSlider), "Grid", "Show grid"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate: err = %v, want ErrDuplicateName", err)
	}
	if err := r.Bind(controltest.New("odd", macro.ControlInvalid), "Odd", "Odd"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("invalid type: err = %v, want ErrUnsupportedType", err)
	}

	out := buf.String()
	if strings.Count(out, "[ERROR]") != 3 {
		t.Errorf("expected 3 error lines, got:\n%s", out)
	}
}

func TestBindWarnsOnMissingText(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
	recording := true
	r, _ := newTestRecorder(&recording, WithLogger(logger))

	if err := r.Bind(controltest.New("opacity", macro.ControlSlider), "", ""); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := strings.Count(buf.String(), "[WARN]"); got != 2 {
		t.Errorf("warnings = %d, want 2:\n%s", got, buf.String())
	}
}

func TestCaptureValueChange(t *testing.T) {
	recording := true
	r, sink := newTestRecorder(&recording)

	slider := controltest.New("opacity", macro.ControlSlider)
	combo := controltest.New("palette", macro.ControlComboBox)
	if err := r.Bind(slider, "Opacity", "Layer opacity"); err != nil {
		t.Fatal(err)
	}
	if err := r.Bind(combo, "Palette", "Color palette"); err != nil {
		t.Fatal(err)
	}

	slider.Change(control.Notification{Int: 75})
	combo.Change(control.Notification{Text: "Gray", Index: 3})

	if len(sink.commands) != 2 {
		t.Fatalf("recorded %d commands, want 2", len(sink.commands))
	}
	cmd := sink.commands[0]
	if cmd.CommandType() != macro.CommandControl || cmd.ControlType() != macro.ControlSlider {
		t.Errorf("command = %v", cmd)
	}
	if cmd.DescriptiveName() != "Opacity" || cmd.ToolTip() != "Layer opacity" {
		t.Errorf("texts = %q %q", cmd.DescriptiveName(), cmd.ToolTip())
	}
	if got := macro.AsInt(cmd.ParameterValue(0)); got != 75 {
		t.Errorf("slider value = %d, want 75", got)
	}

	cmd = sink.commands[1]
	if cmd.NumParameters() != 2 ||
		macro.AsString(cmd.ParameterValue(0)) != "Gray" ||
		macro.AsInt(cmd.ParameterValue(1)) != 3 {
		t.Errorf("combo parameters = %v, %v", cmd.ParameterValue(0), cmd.ParameterValue(1))
	}
}

func TestCaptureIgnoredWhenNotRecording(t *testing.T) {
	recording := false
	r, sink := newTestRecorder(&recording)
	box := controltest.New("grid", macro.ControlCheckBox)
	if err := r.Bind(box, "Grid", "Show grid"); err != nil {
		t.Fatal(err)
	}

	box.Change(control.Notification{Checked: true})
	if len(sink.commands) != 0 {
		t.Fatalf("recorded %d commands outside recording", len(sink.commands))
	}

	recording = true
	box.Change(control.Notification{Checked: true})
	if len(sink.commands) != 1 {
		t.Fatalf("recorded %d commands, want 1", len(sink.commands))
	}
}

func TestCheckableRefinement(t *testing.T) {
	recording := true
	r, sink := newTestRecorder(&recording)
	button := controltest.New("lock", macro.ControlPushButton)
	button.SetCheckable(true, false)
	if err := r.Bind(button, "Lock", "Lock view"); err != nil {
		t.Fatal(err)
	}
	button.Change(control.Notification{Checked: true})

	if len(sink.commands) != 1 {
		t.Fatal("nothing recorded")
	}
	if got := sink.commands[0].ControlType(); got != macro.ControlPushButtonCheckable {
		t.Errorf("control type = %s, want PUSH_BUTTON_CHECKABLE", got)
	}
	if !macro.AsBool(sink.commands[0].ParameterValue(0)) {
		t.Error("checked state not captured")
	}
}

func TestUnbind(t *testing.T) {
	recording := true
	r, sink := newTestRecorder(&recording)
	edit := controltest.New("title", macro.ControlLineEdit)
	if err := r.Bind(edit, "Title", "Window title"); err != nil {
		t.Fatal(err)
	}
	if edit.Subscribers() != 1 {
		t.Fatalf("subscribers = %d, want 1", edit.Subscribers())
	}
	if !r.Unbind("title") {
		t.Fatal("Unbind returned false")
	}
	if edit.Subscribers() != 0 {
		t.Errorf("subscription not cancelled")
	}
	if r.Unbind("title") {
		t.Error("second Unbind returned true")
	}
	edit.Change(control.Notification{Text: "x"})
	if len(sink.commands) != 0 {
		t.Error("unbound control was recorded")
	}
}

func TestBoundNamesAndToolTip(t *testing.T) {
	recording := false
	r, _ := newTestRecorder(&recording)
	for _, name := range []string{"zoom", "axis", "mode"} {
		if err := r.Bind(controltest.New(name, macro.ControlSpinBox), name, "tip "+name); err != nil {
			t.Fatal(err)
		}
	}
	got := strings.Join(r.BoundNames(), ",")
	if got != "axis,mode,zoom" {
		t.Errorf("BoundNames() = %s", got)
	}
	if tip, ok := r.ToolTip("mode"); !ok || tip != "tip mode" {
		t.Errorf("ToolTip(mode) = %q, %v", tip, ok)
	}
	if _, ok := r.ToolTip("missing"); ok {
		t.Error("ToolTip found a missing control")
	}
}

func TestDefaultCommand(t *testing.T) {
	recording := false
	r, _ := newTestRecorder(&recording)
	if err := r.Bind(controltest.New("tabs", macro.ControlTabWidget), "Tabs", "Tabs"); err != nil {
		t.Fatal(err)
	}
	cmd, err := r.DefaultCommand("tabs")
	if err != nil {
		t.Fatal(err)
	}
	h, _ := control.Lookup(macro.ControlTabWidget)
	if err := macro.ValidateParameters(h.Schema, cmd.Parameters()); err != nil {
		t.Errorf("default command does not follow schema: %v", err)
	}
	if _, err := r.DefaultCommand("missing"); !errors.Is(err, ErrNotBound) {
		t.Errorf("err = %v, want ErrNotBound", err)
	}
}

func TestNotify(t *testing.T) {
	recording := true
	r, sink := newTestRecorder(&recording)
	if err := r.Bind(controltest.New("scale", macro.ControlDoubleSpinBox), "Scale", "Scale"); err != nil {
		t.Fatal(err)
	}
	if err := r.Notify("scale", control.Notification{Float: 1.5}); err != nil {
		t.Fatal(err)
	}
	if len(sink.commands) != 1 || macro.AsFloat(sink.commands[0].ParameterValue(0)) != 1.5 {
		t.Errorf("commands = %v", sink.commands)
	}
	if err := r.Notify("nope", control.Notification{}); !errors.Is(err, ErrNotBound) {
		t.Errorf("err = %v, want ErrNotBound", err)
	}
}

func TestPointerCapture(t *testing.T) {
	tests := []struct {
		name  string
		merge bool
		want  []int // points per recorded command
	}{
		{"separate", false, []int{1, 1, 1, 1, 1}},
		{"merged", true, []int{1, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recording := true
			r, sink := newTestRecorder(&recording, WithPointerMoveMerge(tt.merge))
			view := controltest.New("view", macro.ControlInvalid)
			view.Width, view.Height = 640, 480
			if err := r.BindPointer(view, "View", "Main view"); err != nil {
				t.Fatal(err)
			}

			const left = 1
			view.Pointer(control.PointerEvent{Kind: macro.PointerMove, X: 1, Y: 1})
			view.Pointer(control.PointerEvent{Kind: macro.PointerPress, X: 10, Y: 10, Button: left, Buttons: left})
			view.Pointer(control.PointerEvent{Kind: macro.PointerMove, X: 11, Y: 12, Buttons: left})
			view.Pointer(control.PointerEvent{Kind: macro.PointerMove, X: 12, Y: 14, Buttons: left})
			view.Pointer(control.PointerEvent{Kind: macro.PointerMove, X: 13, Y: 16, Buttons: left})
			view.Pointer(control.PointerEvent{Kind: macro.PointerRelease, X: 13, Y: 16, Button: left})

			var got []int
			for _, cmd := range sink.commands {
				got = append(got, cmd.Pointer().NumPoints())
			}
			if len(got) != len(tt.want) {
				t.Fatalf("recorded points %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("recorded points %v, want %v", got, tt.want)
				}
			}
			first := sink.commands[0]
			if first.CommandType() != macro.CommandPointer || first.Pointer().Kind != macro.PointerPress {
				t.Errorf("first command = %v", first)
			}
			if first.Pointer().Width != 640 || first.Pointer().Height != 480 {
				t.Errorf("surface size = %dx%d", first.Pointer().Width, first.Pointer().Height)
			}
			if tt.merge {
				move := sink.commands[1].Pointer()
				if move.NumPoints() != 3 || move.Points[2] != (macro.Point{X: 13, Y: 16}) {
					t.Errorf("merged trajectory = %v", move.Points)
				}
			}
		})
	}
}

func TestResetEndsMoveMerge(t *testing.T) {
	recording := true
	r, sink := newTestRecorder(&recording, WithPointerMoveMerge(true))
	view := controltest.New("view", macro.ControlInvalid)
	view.Width, view.Height = 640, 480
	if err := r.BindPointer(view, "View", "Main view"); err != nil {
		t.Fatal(err)
	}

	const left = 1
	view.Pointer(control.PointerEvent{Kind: macro.PointerMove, X: 5, Y: 5, Buttons: left})
	r.Reset()
	view.Pointer(control.PointerEvent{Kind: macro.PointerMove, X: 6, Y: 6, Buttons: left})

	if len(sink.commands) != 2 {
		t.Fatalf("recorded %d commands, want 2", len(sink.commands))
	}
	for i, cmd := range sink.commands {
		if n := cmd.Pointer().NumPoints(); n != 1 {
			t.Errorf("command %d has %d points, want 1", i, n)
		}
	}
}

func TestBindPointerRequiresSource(t *testing.T) {
	recording := true
	r, _ := newTestRecorder(&recording)
	if err := r.BindPointer(plain{"canvas"}, "Canvas", "Canvas"); !errors.Is(err, ErrNoPointerEvents) {
		t.Errorf("err = %v, want ErrNoPointerEvents", err)
	}
}

type plain struct{ name string }

func (p plain) Name() string               { return p.name }
func (p plain) Type() macro.ControlType    { return macro.ControlInvalid }
func (p plain) NotificationsBlocked() bool { return false }
