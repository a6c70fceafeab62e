// Package playback replays a macro's commands against a live control tree.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/dshills/uimacro/internal/control"
	"github.com/dshills/uimacro/internal/logging"
	"github.com/dshills/uimacro/internal/macro"
	"github.com/dshills/uimacro/internal/macro/custom"
	"github.com/dshills/uimacro/internal/macro/monitor"
	"github.com/dshills/uimacro/internal/notify"
)

// EventLoop lets the host process pending events between steps so the user
// interface stays responsive and repaints.
type EventLoop interface {
	ProcessEvents()
}

// EventLoopFunc adapts a function to EventLoop.
type EventLoopFunc func()

// ProcessEvents implements EventLoop.
func (f EventLoopFunc) ProcessEvents() { f() }

// Indicator shows the user which control playback is about to change.
type Indicator interface {
	MoveTo(x, y int)
}

// Sleeper waits between steps.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep implements Sleeper.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Hooks are called around every command. Either may be nil.
type Hooks struct {
	CommandStarting  func(m *macro.Macro, index int, cmd *macro.Command)
	CommandCompleted func(m *macro.Macro, index int, cmd *macro.Command, err error)
}

// Options control one run.
type Options struct {
	// StopOnError ends the run at the first failing command.
	StopOnError bool
	// ShowIndicator moves the indicator to each control before it changes.
	ShowIndicator bool
	// IgnoreDelays skips the delay after each command.
	IgnoreDelays bool
	// Looping repeats the macro until stopped. Run itself executes one
	// pass; the manager repeats it.
	Looping bool
	// Speed divides every delay. Values <= 0 mean 1.
	Speed float64
	// StartAt is the first command to run, or nil for the first command.
	StartAt *macro.Command
	// StopAfter is the last command to run, or nil to run to the end.
	StopAfter *macro.Command
}

// DefaultOptions returns options for a normal run.
func DefaultOptions() Options {
	return Options{ShowIndicator: true, Speed: 1}
}

func (o Options) delay(cmd *macro.Command) time.Duration {
	if o.IgnoreDelays || cmd.CommandType() == macro.CommandPointer {
		return 0
	}
	speed := o.Speed
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(math.Round(cmd.DelaySeconds() / speed * float64(time.Second)))
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventLoop sets the host event loop.
func WithEventLoop(l EventLoop) Option { return func(e *Engine) { e.loop = l } }

// WithIndicator sets the on-screen indicator.
func WithIndicator(i Indicator) Option { return func(e *Engine) { e.indicator = i } }

// WithSleeper replaces the timer based sleeper.
func WithSleeper(s Sleeper) Option { return func(e *Engine) { e.sleeper = s } }

// WithRegistry sets the registry used for custom commands.
func WithRegistry(r *custom.Registry) Option { return func(e *Engine) { e.registry = r } }

// WithMonitor shares a monitor with the code that pauses and stops runs.
func WithMonitor(m *monitor.Monitor) Option { return func(e *Engine) { e.monitor = m } }

// WithHooks sets the per-command hooks.
func WithHooks(h Hooks) Option { return func(e *Engine) { e.hooks = h } }

// WithPublisher sets where progress and repaint events are published.
func WithPublisher(p notify.Publisher) Option { return func(e *Engine) { e.publisher = p } }

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithStrict makes a dispatch mismatch panic. Recorded data that does not
// fit its control type is a programming error; tests and debug builds
// enable this.
func WithStrict(strict bool) Option { return func(e *Engine) { e.strict = strict } }

// Engine replays macros. An Engine runs one macro at a time.
type Engine struct {
	tree      control.Tree
	loop      EventLoop
	indicator Indicator
	sleeper   Sleeper
	registry  *custom.Registry
	monitor   *monitor.Monitor
	hooks     Hooks
	publisher notify.Publisher
	logger    *logging.Logger
	strict    bool

	running atomic.Bool
}

// New creates an engine that finds controls in tree.
func New(tree control.Tree, opts ...Option) *Engine {
	e := &Engine{tree: tree}
	for _, opt := range opts {
		opt(e)
	}
	if e.sleeper == nil {
		e.sleeper = timerSleeper{}
	}
	if e.monitor == nil {
		e.monitor = monitor.New()
	}
	if e.publisher == nil {
		e.publisher = notify.Nop{}
	}
	e.logger = logging.OrNop(e.logger).WithComponent("playback")
	return e
}

// Monitor returns the monitor consulted by the engine.
func (e *Engine) Monitor() *monitor.Monitor { return e.monitor }

// Running reports whether a run is in progress.
func (e *Engine) Running() bool { return e.running.Load() }

// Run executes the commands of m in order. It returns nil when every
// command succeeded. Failing commands produce a *StepError; with
// StopOnError the first one is returned, otherwise all of them are
// collected in a *RunError. A stop request or context cancellation ends
// the run with ErrStoppedByUser after the current command finishes.
func (e *Engine) Run(ctx context.Context, m *macro.Macro, opts Options) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	start := 0
	if opts.StartAt != nil {
		start = m.IndexOf(opts.StartAt)
		if start < 0 {
			return fmt.Errorf("%w in macro %q", ErrStartNotFound, m.Name())
		}
	}

	log := e.logger.WithField("macro", m.Name())
	log.Debug("Running %d commands starting at %d", m.Len()-start, start)

	var steps []*StepError
	finish := func(stop error) error {
		if len(steps) == 0 {
			return stop
		}
		return &RunError{Steps: steps, Stop: stop}
	}

	cmds := m.Commands()
	for i := start; i < len(cmds); i++ {
		cmd := cmds[i]
		if e.monitor.Mode() == monitor.Stop || ctx.Err() != nil {
			return finish(ErrStoppedByUser)
		}

		e.starting(m, i, cmd)
		err := e.step(ctx, cmd, opts)
		if err != nil {
			if e.strict && errors.Is(err, ErrDispatchMismatch) {
				panic(err)
			}
			if errors.Is(err, custom.ErrStopped) || (ctx.Err() != nil && errors.Is(err, ctx.Err())) {
				e.completed(m, i, cmd, err)
				return finish(ErrStoppedByUser)
			}
			serr := &StepError{Index: i, Command: cmd, Err: err}
			log.Warn("%s", serr)
			e.completed(m, i, cmd, serr)
			if opts.StopOnError {
				return serr
			}
			steps = append(steps, serr)
		} else {
			e.processEvents()
			e.completed(m, i, cmd, nil)
		}
		e.processEvents()

		if cmd == opts.StopAfter {
			return finish(stoppedAfter(cmd))
		}
		if e.monitor.TestForStopContext(ctx) {
			return finish(ErrStoppedByUser)
		}

		if d := opts.delay(cmd); d > 0 {
			if err := e.sleeper.Sleep(ctx, d); err != nil {
				return finish(ErrStoppedByUser)
			}
		}
		e.processEvents()
	}
	return finish(nil)
}

func (e *Engine) step(ctx context.Context, cmd *macro.Command, opts Options) error {
	if cmd.CommandType() == macro.CommandCustom {
		return e.custom(ctx, cmd)
	}

	c := e.find(cmd.Name())
	if c == nil {
		return ErrControlNotFound
	}
	if c.NotificationsBlocked() {
		return ErrNotificationsBlocked
	}

	switch cmd.CommandType() {
	case macro.CommandPointer:
		return control.ReplayPointer(c, cmd.Pointer(), e.processEvents)
	default:
		if opts.ShowIndicator {
			e.indicate(c)
		}
		return control.Apply(cmd.ControlType(), c, cmd.Parameters())
	}
}

func (e *Engine) custom(ctx context.Context, cmd *macro.Command) error {
	if e.registry == nil {
		return ErrNoRegistry
	}
	env := &custom.Env{
		Logger: e.logger.WithField("operation", cmd.OperationName()),
		Stopped: func() bool {
			return e.monitor.Mode() == monitor.Stop || ctx.Err() != nil
		},
		Sleep: e.sleeper.Sleep,
	}
	return e.registry.Execute(ctx, env, cmd)
}

func (e *Engine) find(name string) control.Control {
	if e.tree == nil || name == "" {
		return nil
	}
	return e.tree.FindByName(name)
}

func (e *Engine) indicate(c control.Control) {
	if e.indicator == nil {
		return
	}
	if l, ok := c.(control.Locatable); ok {
		e.indicator.MoveTo(l.ScreenCenter())
		e.processEvents()
	}
}

func (e *Engine) processEvents() {
	if e.loop != nil {
		e.loop.ProcessEvents()
	}
}

func (e *Engine) starting(m *macro.Macro, i int, cmd *macro.Command) {
	if e.hooks.CommandStarting != nil {
		e.hooks.CommandStarting(m, i, cmd)
	}
	e.publisher.Publish(notify.Event{
		Topic:   notify.TopicCommandStarting,
		Macro:   m.ID(),
		Index:   i,
		Payload: cmd.Title(),
	})
}

func (e *Engine) completed(m *macro.Macro, i int, cmd *macro.Command, err error) {
	if e.hooks.CommandCompleted != nil {
		e.hooks.CommandCompleted(m, i, cmd, err)
	}
	e.publisher.Publish(notify.Event{
		Topic:   notify.TopicCommandCompleted,
		Macro:   m.ID(),
		Index:   i,
		Payload: err,
	})
	e.publisher.Publish(notify.Event{Topic: notify.TopicRepaint, Macro: m.ID(), Index: -1})
}
