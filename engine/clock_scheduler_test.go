package engine

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lixenwraith/gridsim/core"
)

func newTestScheduler(t *testing.T, interval time.Duration) (*ClockScheduler, *World) {
	t.Helper()
	w := newTestWorld(t, 10, 10)
	cs, err := NewClockScheduler(w, interval, interval.Seconds())
	if err != nil {
		t.Fatalf("NewClockScheduler failed: %v", err)
	}
	return cs, w
}

func TestNewClockScheduler_Validation(t *testing.T) {
	w := newTestWorld(t, 4, 4)
	if _, err := NewClockScheduler(w, 0, frame); err == nil {
		t.Error("Expected error for zero interval")
	}
	if _, err := NewClockScheduler(w, -time.Second, frame); err == nil {
		t.Error("Expected error for negative interval")
	}
	if _, err := NewClockScheduler(nil, time.Second, 1); err == nil {
		t.Error("Expected error for nil world")
	}
	for _, dt := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := NewClockScheduler(w, time.Second, dt); !errors.Is(err, ErrNonFiniteDelta) {
			t.Errorf("Expected ErrNonFiniteDelta for dt=%v, got %v", dt, err)
		}
	}
}

func TestClockScheduler_StepIsDeterministic(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	cs, err := NewClockScheduler(w, time.Second/60, frame)
	if err != nil {
		t.Fatalf("NewClockScheduler failed: %v", err)
	}
	if cs.TickDelta() != frame {
		t.Fatalf("Expected dt %v independent of interval rounding, got %v", frame, cs.TickDelta())
	}
	e := w.AddEntity(core.Entity{ID: 1, Position: core.Vec2{X: 0.5}, Velocity: core.Vec2{X: 1}})

	var observed []uint64
	cs.OnTick(func(w *World, stats TickStats) {
		observed = append(observed, stats.Ticks)
	})

	if err := cs.Step(600); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if cs.TickCount() != 600 {
		t.Errorf("Expected 600 ticks, got %d", cs.TickCount())
	}
	if len(observed) != 600 || observed[599] != 600 {
		t.Errorf("Expected handler called per tick with running count, got %d calls", len(observed))
	}
	if math.Abs(e.Position.X-0.5) > 1e-9 {
		t.Errorf("Expected 10 simulated seconds to return x to 0.5, got %v", e.Position.X)
	}
	if w.Stats().Wraps != 1 {
		t.Errorf("Expected exactly one wrap across x=10, got %d", w.Stats().Wraps)
	}
}

func TestClockScheduler_FullLapFromOrigin(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	cs, err := NewClockScheduler(w, time.Second/60, frame)
	if err != nil {
		t.Fatalf("NewClockScheduler failed: %v", err)
	}
	e := w.AddEntity(core.Entity{ID: 1, Velocity: core.Vec2{X: 1}})

	if err := cs.Step(600); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	// Landing a hair either side of the seam is the same point on the torus
	if d := w.Displacement(core.Vec2{}, e.Position); math.Abs(d.X) > 1e-9 || d.Y != 0 {
		t.Errorf("Expected x back at the origin, got %v", e.Position)
	}
	if w.Stats().Wraps != 1 {
		t.Errorf("Expected exactly one wrap, got %d", w.Stats().Wraps)
	}
}

func TestClockScheduler_View(t *testing.T) {
	cs, w := newTestScheduler(t, time.Second)
	w.AddEntity(core.Entity{ID: 9, Position: core.Vec2{X: 4, Y: 4}})
	cs.Step(1)

	var found *core.Entity
	cs.View(func(w *World) {
		found, _ = w.EntityAt(core.Vec2{X: 4.5, Y: 4.5})
	})
	if found == nil || found.ID != 9 {
		t.Errorf("Expected entity 9 via View, got %v", found)
	}
}

func TestClockScheduler_StartStop(t *testing.T) {
	cs, _ := newTestScheduler(t, time.Millisecond)

	var ticks atomic.Int64
	cs.OnTick(func(*World, TickStats) { ticks.Add(1) })

	cs.Start()
	cs.Start() // second start is a no-op

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cs.Stop()
	cs.Stop() // idempotent

	if ticks.Load() < 5 {
		t.Fatalf("Expected at least 5 ticks, got %d", ticks.Load())
	}

	after := cs.TickCount()
	time.Sleep(10 * time.Millisecond)
	if cs.TickCount() != after {
		t.Error("Expected no ticks after Stop")
	}
}

func TestClockScheduler_StopBeforeStart(t *testing.T) {
	cs, _ := newTestScheduler(t, time.Millisecond)

	var ticks atomic.Int64
	cs.OnTick(func(*World, TickStats) { ticks.Add(1) })

	cs.Stop() // nothing running, must not disarm a later Stop
	if cs.IsRunning() {
		t.Fatal("Expected scheduler not running")
	}

	cs.Start()
	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		cs.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Stop to return after an earlier no-op Stop")
	}
	if cs.IsRunning() {
		t.Error("Expected scheduler stopped")
	}

	after := cs.TickCount()
	time.Sleep(10 * time.Millisecond)
	if cs.TickCount() != after {
		t.Error("Expected no ticks after Stop")
	}
}

func TestClockScheduler_Restart(t *testing.T) {
	cs, _ := newTestScheduler(t, time.Millisecond)

	cs.Start()
	cs.Stop()
	stopped := cs.TickCount()

	cs.Start()
	deadline := time.Now().Add(2 * time.Second)
	for cs.TickCount() == stopped && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cs.Stop()

	if cs.TickCount() == stopped {
		t.Error("Expected ticks after restart")
	}
}

func TestClockScheduler_Pause(t *testing.T) {
	cs, _ := newTestScheduler(t, time.Millisecond)
	cs.Pause()
	if !cs.IsPaused() {
		t.Fatal("Expected paused state")
	}

	cs.Start()
	defer cs.Stop()
	time.Sleep(20 * time.Millisecond)
	if n := cs.TickCount(); n != 0 {
		t.Errorf("Expected no ticks while paused, got %d", n)
	}

	cs.Resume()
	deadline := time.Now().Add(2 * time.Second)
	for cs.TickCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if cs.TickCount() == 0 {
		t.Error("Expected ticks after Resume")
	}
}
