package playback

import (
	"errors"
	"strings"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/macro"
	"github.com/dshills/uimacro/internal/macro/monitor"
)

// Playback errors.
var (
	// ErrControlNotFound indicates a command whose control is not in the
	// control tree.
	ErrControlNotFound = errors.New("control not found")

	// ErrNotificationsBlocked indicates a control that currently
	// suppresses its notifications.
	ErrNotificationsBlocked = errors.New("control has notifications blocked")

	// ErrDispatchMismatch indicates recorded parameters that do not fit
	// the control type's handler.
	ErrDispatchMismatch = control.ErrDispatchMismatch

	// ErrStoppedByUser is returned when playback was stopped or its
	// context was cancelled.
	ErrStoppedByUser = errors.New(monitor.StopMessage)

	// ErrStoppedAfter is returned when the stop-after command completed.
	ErrStoppedAfter = errors.New("macro stopped after command")

	// ErrStartNotFound is returned when the start-at command is not part
	// of the macro.
	ErrStartNotFound = errors.New("macro command to start at not found")

	// ErrAlreadyRunning is returned by Run while another run is active.
	ErrAlreadyRunning = errors.New("a macro is already running")

	// ErrNoRegistry is returned for custom commands when the engine has no
	// custom operation registry.
	ErrNoRegistry = errors.New("no custom operation registry")
)

// StepError is the failure of one command.
type StepError struct {
	Index   int
	Command *macro.Command
	Err     error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	name := e.Command.Name()
	switch {
	case errors.Is(e.Err, ErrControlNotFound):
		return "Unable to find object named " + name
	case errors.Is(e.Err, ErrNotificationsBlocked):
		return "Object named " + name + " has signals blocked"
	default:
		return e.Command.Title() + ": " + e.Err.Error()
	}
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error { return e.Err }

// RunError aggregates the step errors of a run that continued past
// failures. Stop is set when the run also ended early.
type RunError struct {
	Steps []*StepError
	Stop  error
}

// Error lists every step error on its own line, followed by the stop
// reason.
func (e *RunError) Error() string {
	var b strings.Builder
	for i, s := range e.Steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s.Error())
	}
	if e.Stop != nil {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Stop.Error())
	}
	return b.String()
}

// Unwrap returns the step errors and the stop reason.
func (e *RunError) Unwrap() []error {
	errs := make([]error, 0, len(e.Steps)+1)
	for _, s := range e.Steps {
		errs = append(errs, s)
	}
	if e.Stop != nil {
		errs = append(errs, e.Stop)
	}
	return errs
}

// stopError carries a user facing stop message.
type stopError struct {
	msg string
	err error
}

func (e *stopError) Error() string { return e.msg }
func (e *stopError) Unwrap() error { return e.err }

func stoppedAfter(cmd *macro.Command) error {
	name := cmd.DescriptiveName()
	if name == "" {
		name = cmd.Title()
	}
	return &stopError{msg: "Macro stopped after " + name, err: ErrStoppedAfter}
}
