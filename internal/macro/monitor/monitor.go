// Package monitor holds the shared pause and stop state consulted by a
// running macro.
package monitor

import (
	"context"
	"sync"
	"time"
)

// StopMessage is the standard text reported when the user stops a macro.
const StopMessage = "Macro stopped at request of user"

// Mode is the run state of a macro.
type Mode int

const (
	// Run lets playback proceed.
	Run Mode = iota
	// Pause blocks playback at the next check until the mode changes.
	Pause
	// Stop makes playback abort at the next check.
	Stop
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Run:
		return "RUN"
	case Pause:
		return "PAUSE"
	case Stop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// DefaultPollInterval is the sleep between yields while paused.
const DefaultPollInterval = 50 * time.Millisecond

// Monitor is a mutex-guarded tri-state mode. SetMode may be called from any
// goroutine; TestForStop is called by the playback loop.
type Monitor struct {
	mu   sync.Mutex
	cond *sync.Cond
	mode Mode

	yield        func()
	pollInterval time.Duration
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithYield makes TestForStop service the host event loop while paused by
// calling fn repeatedly, sleeping the poll interval between calls. Without a
// yield function the pause wait blocks on a condition variable.
func WithYield(fn func()) Option {
	return func(m *Monitor) {
		m.yield = fn
	}
}

// WithPollInterval sets the sleep between yields while paused.
func WithPollInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// New creates a monitor in Run mode.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		mode:         Run,
		pollInterval: DefaultPollInterval,
	}
	m.cond = sync.NewCond(&m.mu)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetMode changes the mode and wakes any paused waiter.
func (m *Monitor) SetMode(mode Mode) {
	m.mu.Lock()
	m.mode = mode
	m.mu.Unlock()
	m.cond.Broadcast()
}

// Mode returns the current mode.
func (m *Monitor) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// TogglePause switches between Run and Pause. Stop is left unchanged.
// Returns the new mode.
func (m *Monitor) TogglePause() Mode {
	m.mu.Lock()
	switch m.mode {
	case Run:
		m.mode = Pause
	case Pause:
		m.mode = Run
	}
	mode := m.mode
	m.mu.Unlock()
	m.cond.Broadcast()
	return mode
}

// TestForStop returns true when the mode is Stop and false when it is Run.
// While the mode is Pause it blocks until the mode changes.
func (m *Monitor) TestForStop() bool {
	return m.TestForStopContext(context.Background())
}

// TestForStopContext is TestForStop with cancellation. A done context is
// treated as Stop.
func (m *Monitor) TestForStopContext(ctx context.Context) bool {
	if m.yield == nil && ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.cond.Broadcast()
		})
		defer stop()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for m.mode == Pause && ctx.Err() == nil {
		if m.yield == nil {
			m.cond.Wait()
			continue
		}
		m.mu.Unlock()
		m.yield()
		select {
		case <-ctx.Done():
		case <-time.After(m.pollInterval):
		}
		m.mu.Lock()
	}
	return m.mode == Stop || ctx.Err() != nil
}

// StopMessage returns the standard text for a user stop.
func (m *Monitor) StopMessage() string {
	return StopMessage
}
