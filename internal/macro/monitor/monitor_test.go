package monitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunDoesNotStop(t *testing.T) {
	m := New()
	if m.TestForStop() {
		t.Error("TestForStop() = true in Run mode")
	}
}

func TestStop(t *testing.T) {
	m := New()
	m.SetMode(Stop)
	if !m.TestForStop() {
		t.Error("TestForStop() = false in Stop mode")
	}
	if m.StopMessage() != "Macro stopped at request of user" {
		t.Errorf("StopMessage() = %q", m.StopMessage())
	}
}

func TestPauseBlocksUntilRun(t *testing.T) {
	m := New()
	m.SetMode(Pause)

	result := make(chan bool, 1)
	go func() {
		result <- m.TestForStop()
	}()

	select {
	case <-result:
		t.Fatal("TestForStop returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	m.SetMode(Run)
	select {
	case stopped := <-result:
		if stopped {
			t.Error("TestForStop() = true after resuming")
		}
	case <-time.After(time.Second):
		t.Fatal("TestForStop did not return after Run")
	}
}

func TestPauseThenStop(t *testing.T) {
	m := New()
	m.SetMode(Pause)

	result := make(chan bool, 1)
	go func() {
		result <- m.TestForStop()
	}()

	time.Sleep(20 * time.Millisecond)
	m.SetMode(Stop)
	select {
	case stopped := <-result:
		if !stopped {
			t.Error("TestForStop() = false after Stop")
		}
	case <-time.After(time.Second):
		t.Fatal("TestForStop did not return after Stop")
	}
}

func TestPauseYields(t *testing.T) {
	var calls atomic.Int32
	m := New(WithYield(func() { calls.Add(1) }), WithPollInterval(time.Millisecond))
	m.SetMode(Pause)

	done := make(chan bool, 1)
	go func() {
		done <- m.TestForStop()
	}()

	deadline := time.Now().Add(time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatalf("yield called %d times while paused", calls.Load())
	}

	m.SetMode(Run)
	select {
	case stopped := <-done:
		if stopped {
			t.Error("TestForStop() = true after resuming")
		}
	case <-time.After(time.Second):
		t.Fatal("TestForStop did not return")
	}
}

func TestContextCancelWhilePaused(t *testing.T) {
	m := New()
	m.SetMode(Pause)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		done <- m.TestForStopContext(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case stopped := <-done:
		if !stopped {
			t.Error("cancelled context did not report stop")
		}
	case <-time.After(time.Second):
		t.Fatal("TestForStopContext ignored cancellation")
	}
}

func TestTogglePause(t *testing.T) {
	m := New()
	if got := m.TogglePause(); got != Pause {
		t.Errorf("TogglePause from Run = %v", got)
	}
	if got := m.TogglePause(); got != Run {
		t.Errorf("TogglePause from Pause = %v", got)
	}
	m.SetMode(Stop)
	if got := m.TogglePause(); got != Stop {
		t.Errorf("TogglePause from Stop = %v", got)
	}
}
