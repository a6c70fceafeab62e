package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/control/controltest"
	"github.com/dshills/uimacro/internal/macro"
	"github.com/dshills/uimacro/internal/macro/monitor"
	"github.com/dshills/uimacro/internal/macro/playback"
	"github.com/dshills/uimacro/internal/notify"
)

func noSleep(context.Context, time.Duration) error { return nil }

type fakeHelper struct {
	mu       sync.Mutex
	modified []*macro.Macro
	starts   int
	ends     int
	resets   int
	maxLoops int
}

func (h *fakeHelper) MacroWasModified(m *macro.Macro) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modified = append(h.modified, m)
}

func (h *fakeHelper) ExecutionStarting(*macro.Macro, playback.Options) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *fakeHelper) ExecutionEnding(*macro.Macro, playback.Options) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ends++
}

func (h *fakeHelper) ResetMacro(_ context.Context, m *macro.Macro) (*macro.Macro, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resets++
	if h.resets >= h.maxLoops {
		return nil, nil
	}
	return m, nil
}

func newTestManager(t *testing.T, tree control.Tree, helper Helper) (*Manager, *notify.Bus) {
	t.Helper()
	bus := notify.New()
	m := New(Config{
		Tree:      tree,
		Sleeper:   playback.SleeperFunc(noSleep),
		Publisher: bus,
		Helper:    helper,
		Options:   playback.DefaultOptions(),
	})
	return m, bus
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{Off, "OFF"},
		{RecordingNewMacro, "RECORDING_NEW_MACRO"},
		{RecordingInsertCommands, "RECORDING_INSERT_COMMANDS"},
		{Running, "RUNNING"},
		{Mode(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(tt.mode), got, tt.want)
		}
	}
}

func TestRecordNewMacro(t *testing.T) {
	helper := &fakeHelper{}
	m, bus := newTestManager(t, control.Map{}, helper)

	var modes []Mode
	bus.SubscribeTopic(notify.TopicMode, func(ev notify.Event) {
		modes = append(modes, ev.Payload.(Mode))
	})

	slider := controltest.New("opacity", macro.ControlSlider)
	if err := m.Recorder().Bind(slider, "Opacity", "Layer opacity"); err != nil {
		t.Fatal(err)
	}

	slider.Change(control.Notification{Int: 10})
	group := macro.NewGroup("Main")
	mac, err := m.StartRecordingNew(group, "")
	if err != nil {
		t.Fatal(err)
	}
	if mac.Name() != "Macro 1" {
		t.Errorf("name = %q, want Macro 1", mac.Name())
	}
	if !m.IsRecording() {
		t.Fatal("IsRecording = false while recording")
	}
	slider.Change(control.Notification{Int: 20})
	slider.Change(control.Notification{Int: 30})

	got, err := m.StopRecording()
	if err != nil {
		t.Fatal(err)
	}
	slider.Change(control.Notification{Int: 40})

	if got != mac || mac.Len() != 2 {
		t.Fatalf("recorded %d commands, want 2", mac.Len())
	}
	if v := macro.AsInt(mac.Commands()[1].ParameterValue(0)); v != 30 {
		t.Errorf("second value = %d, want 30", v)
	}
	if group.Len() != 1 || group.Macros()[0] != mac {
		t.Error("macro was not added to the group")
	}
	if len(helper.modified) != 1 || helper.modified[0] != mac {
		t.Error("MacroWasModified not called with the recorded macro")
	}
	if len(modes) != 2 || modes[0] != RecordingNewMacro || modes[1] != Off {
		t.Errorf("mode events = %v", modes)
	}
	if _, err := m.StopRecording(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("second StopRecording: err = %v, want ErrNotRecording", err)
	}
}

func TestPointerMovesDoNotMergeAcrossRecordings(t *testing.T) {
	m := New(Config{
		Tree:              control.Map{},
		Sleeper:           playback.SleeperFunc(noSleep),
		Options:           playback.DefaultOptions(),
		MergePointerMoves: true,
	})
	canvas := controltest.New("canvas", macro.ControlInvalid)
	canvas.Width, canvas.Height = 320, 200
	if err := m.Recorder().BindPointer(canvas, "Canvas", "Drawing area"); err != nil {
		t.Fatal(err)
	}

	const left = 1
	drag := control.PointerEvent{Kind: macro.PointerMove, X: 4, Y: 4, Buttons: left}
	group := macro.NewGroup("Main")

	a, err := m.StartRecordingNew(group, "A")
	if err != nil {
		t.Fatal(err)
	}
	canvas.Pointer(drag)
	if _, err := m.StopRecording(); err != nil {
		t.Fatal(err)
	}

	b, err := m.StartRecordingNew(group, "B")
	if err != nil {
		t.Fatal(err)
	}
	canvas.Pointer(drag)
	if _, err := m.StopRecording(); err != nil {
		t.Fatal(err)
	}

	if a.Len() != 1 || a.Commands()[0].Pointer().NumPoints() != 1 {
		t.Errorf("macro A: %d commands, want 1 with a single point", a.Len())
	}
	if b.Len() != 1 {
		t.Errorf("macro B: %d commands, want 1", b.Len())
	}
}

func TestRecordInsert(t *testing.T) {
	m, _ := newTestManager(t, control.Map{}, nil)
	mac := macro.New("Edit")
	a := mustCommand(t, "a")
	b := mustCommand(t, "b")
	mac.Append(a)
	mac.Append(b)

	if err := m.StartRecordingInsert(mac, a); err != nil {
		t.Fatal(err)
	}
	x := mustCommand(t, "x")
	y := mustCommand(t, "y")
	if !m.AddCommand(x) || !m.AddCommand(y) {
		t.Fatal("AddCommand returned false while recording")
	}
	if _, err := m.StopRecording(); err != nil {
		t.Fatal(err)
	}
	if m.AddCommand(mustCommand(t, "z")) {
		t.Error("AddCommand recorded while off")
	}

	want := []string{"a", "x", "y", "b"}
	cmds := mac.Commands()
	if len(cmds) != len(want) {
		t.Fatalf("len = %d, want %d", len(cmds), len(want))
	}
	for i, name := range want {
		if cmds[i].Name() != name {
			t.Errorf("command %d = %q, want %q", i, cmds[i].Name(), name)
		}
	}

	if err := m.StartRecordingInsert(mac, nil); err != nil {
		t.Fatal(err)
	}
	m.AddCommand(mustCommand(t, "first"))
	_, _ = m.StopRecording()
	if mac.Commands()[0].Name() != "first" {
		t.Errorf("insert with nil after: first = %q", mac.Commands()[0].Name())
	}

	if err := m.StartRecordingInsert(mac, mustCommand(t, "stranger")); !errors.Is(err, ErrNotInMacro) {
		t.Errorf("foreign command: err = %v, want ErrNotInMacro", err)
	}
}

func TestStartRecordingRequiresOff(t *testing.T) {
	m, _ := newTestManager(t, control.Map{}, nil)
	group := macro.NewGroup("Main")
	if _, err := m.StartRecordingNew(group, "One"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.StartRecordingNew(group, "Two"); !errors.Is(err, ErrBusy) {
		t.Errorf("nested recording: err = %v, want ErrBusy", err)
	}
	if err := m.StartRecordingInsert(group.Macros()[0], nil); !errors.Is(err, ErrBusy) {
		t.Errorf("insert while recording: err = %v, want ErrBusy", err)
	}
	mac := macro.New("Run")
	mac.Append(mustCommand(t, "a"))
	if _, err := m.RunMacro(context.Background(), mac, nil, nil); !errors.Is(err, ErrBusy) {
		t.Errorf("run while recording: err = %v, want ErrBusy", err)
	}
}

func TestRunMacro(t *testing.T) {
	button := controltest.New("apply", macro.ControlPushButton)
	tree := control.Map{}
	tree.Add(button)
	helper := &fakeHelper{}
	m, _ := newTestManager(t, tree, helper)

	mac := macro.New("Apply")
	mac.Append(mustCommand(t, "apply"))
	mac.Append(mustCommand(t, "apply"))

	if _, err := m.RunMacro(context.Background(), mac, nil, nil); err != nil {
		t.Fatalf("RunMacro: %v", err)
	}
	if button.Clicks() != 2 {
		t.Errorf("clicks = %d, want 2", button.Clicks())
	}
	if helper.starts != 1 || helper.ends != 1 {
		t.Errorf("starts=%d ends=%d, want 1 and 1", helper.starts, helper.ends)
	}
	if m.Mode() != Off {
		t.Errorf("mode after run = %s, want OFF", m.Mode())
	}

	if _, err := m.RunMacro(context.Background(), macro.New("Empty"), nil, nil); !errors.Is(err, ErrEmptyMacro) {
		t.Errorf("empty macro: err = %v, want ErrEmptyMacro", err)
	}
}

func TestRunMacroLoopsUntilReset(t *testing.T) {
	button := controltest.New("apply", macro.ControlPushButton)
	tree := control.Map{}
	tree.Add(button)
	helper := &fakeHelper{maxLoops: 3}
	m, _ := newTestManager(t, tree, helper)

	opts := m.Options()
	opts.Looping = true
	m.SetOptions(opts)

	mac := macro.New("Loop")
	mac.Append(mustCommand(t, "apply"))
	if _, err := m.RunMacro(context.Background(), mac, nil, nil); err != nil {
		t.Fatalf("RunMacro: %v", err)
	}
	if button.Clicks() != 3 {
		t.Errorf("clicks = %d, want 3", button.Clicks())
	}
	if helper.starts != 3 || helper.resets != 3 {
		t.Errorf("starts=%d resets=%d, want 3 and 3", helper.starts, helper.resets)
	}
}

func TestRunMacroLoopEndsOnError(t *testing.T) {
	helper := &fakeHelper{maxLoops: 10}
	m, _ := newTestManager(t, control.Map{}, helper)
	opts := m.Options()
	opts.Looping = true
	m.SetOptions(opts)

	mac := macro.New("Broken")
	mac.Append(mustCommand(t, "missing"))
	_, err := m.RunMacro(context.Background(), mac, nil, nil)
	if !errors.Is(err, playback.ErrControlNotFound) {
		t.Fatalf("err = %v, want ErrControlNotFound", err)
	}
	if helper.starts != 1 || helper.resets != 0 {
		t.Errorf("starts=%d resets=%d, want 1 and 0", helper.starts, helper.resets)
	}
}

func TestStopEndsLoopingRun(t *testing.T) {
	button := controltest.New("apply", macro.ControlPushButton)
	tree := control.Map{}
	tree.Add(button)

	var m *Manager
	clicks := 0
	m = New(Config{
		Tree: tree,
		Sleeper: playback.SleeperFunc(func(context.Context, time.Duration) error {
			clicks++
			if clicks == 5 {
				m.Stop()
			}
			return nil
		}),
		Options: playback.Options{Looping: true, Speed: 1},
	})

	mac := macro.New("Forever")
	mac.Append(mustCommand(t, "apply"))
	_, err := m.RunMacro(context.Background(), mac, nil, nil)
	if !errors.Is(err, playback.ErrStoppedByUser) {
		t.Fatalf("err = %v, want ErrStoppedByUser", err)
	}
	if button.Clicks() != 5 {
		t.Errorf("clicks = %d, want 5", button.Clicks())
	}
}

func TestRunShortcut(t *testing.T) {
	button := controltest.New("apply", macro.ControlPushButton)
	tree := control.Map{}
	tree.Add(button)
	m, _ := newTestManager(t, tree, nil)

	keyA, _ := macro.ShortcutKeyForLetter('A')
	keyB, _ := macro.ShortcutKeyForLetter('B')
	mac := macro.New("Apply")
	mac.SetShortcut(keyB)
	mac.Append(mustCommand(t, "apply"))
	other := macro.NewGroup("Other")
	other.Append(mac)
	groups := []*macro.Group{macro.NewGroup("Empty"), nil, other}

	ran, err := m.RunShortcut(context.Background(), groups, keyA)
	if ran || err != nil {
		t.Errorf("unbound key: ran=%v err=%v", ran, err)
	}
	ran, err = m.RunShortcut(context.Background(), groups, keyB)
	if !ran || err != nil {
		t.Errorf("bound key: ran=%v err=%v", ran, err)
	}
	if ran, _ := m.RunShortcut(context.Background(), groups, macro.KeyNone); ran {
		t.Error("KeyNone ran a macro")
	}
	if button.Clicks() != 1 {
		t.Errorf("clicks = %d, want 1", button.Clicks())
	}
}

func TestDefaultMacroName(t *testing.T) {
	m, _ := newTestManager(t, control.Map{}, nil)
	g1 := macro.NewGroup("One")
	g1.Append(macro.New("Macro 1"))
	g2 := macro.NewGroup("Two")
	g2.Append(macro.New("Macro 2"))
	g2.Append(macro.New("Macro 4"))

	groups := []*macro.Group{g1, g2}
	if got := m.DefaultMacroName(groups); got != "Macro 3" {
		t.Errorf("first = %q, want Macro 3", got)
	}
	g1.Append(macro.New("Macro 3"))
	if got := m.DefaultMacroName(groups); got != "Macro 5" {
		t.Errorf("second = %q, want Macro 5", got)
	}
	g2.RemoveMacro(g2.ByName("Macro 2"))
	if got := m.DefaultMacroName(groups); got != "Macro 5" {
		t.Errorf("lower numbers reused: got %q, want Macro 5", got)
	}
}

func TestPauseContinue(t *testing.T) {
	m, _ := newTestManager(t, control.Map{}, nil)
	m.Monitor().SetMode(monitor.Run)
	first := m.PauseContinue()
	second := m.PauseContinue()
	if first == second {
		t.Errorf("PauseContinue did not toggle: %s then %s", first, second)
	}
}

func TestNewCustomCommand(t *testing.T) {
	m, _ := newTestManager(t, control.Map{}, nil)
	cmd, err := m.NewCustomCommand("DELAY")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.CommandType() != macro.CommandCustom || cmd.NumParameters() != 1 {
		t.Errorf("unexpected command %s with %d parameters", cmd, cmd.NumParameters())
	}
	if _, err := m.NewCustomCommand("NOPE"); err == nil {
		t.Error("unknown operation accepted")
	}
}

func mustCommand(t *testing.T, name string) *macro.Command {
	t.Helper()
	cmd, err := macro.NewControlCommand(macro.ControlPushButton, name, "Press "+name, "")
	if err != nil {
		t.Fatal(err)
	}
	h, _ := control.Lookup(macro.ControlPushButton)
	for _, p := range macro.ParametersFromSchema(h.Schema) {
		cmd.AddParameter(p)
	}
	return cmd
}
