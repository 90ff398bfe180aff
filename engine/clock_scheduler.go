package engine

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/gridsim/core"
	"github.com/lixenwraith/gridsim/vmath"
)

// TickHandler observes the world right after a tick, under the scheduler lock
type TickHandler func(w *World, stats TickStats)

// ClockScheduler drives a World on a fixed tick
// Owns the world while running; all access goes through Step, View or tick handlers
type ClockScheduler struct {
	world *World
	mu    sync.Mutex

	// Tick configuration
	tickInterval     time.Duration
	dt               float64   // seconds advanced per tick, fixed for determinism
	nextTickDeadline time.Time // Next tick deadline for drift correction

	handlers []TickHandler

	isPaused  atomic.Bool
	tickCount atomic.Uint64

	// Control channels, lifeMu serializes Start and Stop
	lifeMu   sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewClockScheduler creates a scheduler that fires every tickInterval of wall time
// and advances the world by dt simulated seconds per tick.
// dt is not derived from tickInterval, a Duration holds whole nanoseconds only.
func NewClockScheduler(world *World, tickInterval time.Duration, dt float64) (*ClockScheduler, error) {
	if world == nil {
		return nil, fmt.Errorf("clock scheduler: nil world")
	}
	if tickInterval <= 0 {
		return nil, fmt.Errorf("clock scheduler: tick interval must be positive, got %v", tickInterval)
	}
	if !vmath.IsFinite(dt) {
		return nil, fmt.Errorf("clock scheduler dt=%v: %w", dt, ErrNonFiniteDelta)
	}

	return &ClockScheduler{
		world:        world,
		tickInterval: tickInterval,
		dt:           dt,
	}, nil
}

// OnTick registers a handler called after every tick, must be called before Start()
func (cs *ClockScheduler) OnTick(h TickHandler) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.handlers = append(cs.handlers, h)
}

// TickInterval returns the wall-clock period between ticks
func (cs *ClockScheduler) TickInterval() time.Duration { return cs.tickInterval }

// TickDelta returns the simulated seconds advanced per tick
func (cs *ClockScheduler) TickDelta() float64 { return cs.dt }

// TickCount returns the number of ticks processed by this scheduler
func (cs *ClockScheduler) TickCount() uint64 { return cs.tickCount.Load() }

// Pause suspends ticking without stopping the loop
func (cs *ClockScheduler) Pause() { cs.isPaused.Store(true) }

// Resume continues ticking after Pause
func (cs *ClockScheduler) Resume() { cs.isPaused.Store(false) }

// IsPaused reports the pause state
func (cs *ClockScheduler) IsPaused() bool { return cs.isPaused.Load() }

// View runs fn with exclusive access to the world between ticks
func (cs *ClockScheduler) View(fn func(w *World)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	fn(cs.world)
}

// Step processes n ticks synchronously, ignoring pause state
func (cs *ClockScheduler) Step(n int) error {
	for i := 0; i < n; i++ {
		if err := cs.processTick(); err != nil {
			return err
		}
	}
	return nil
}

// Start begins the scheduler loop; a stopped scheduler may be started again
func (cs *ClockScheduler) Start() {
	cs.lifeMu.Lock()
	defer cs.lifeMu.Unlock()

	if !cs.running.CompareAndSwap(false, true) {
		return
	}
	stop := make(chan struct{})
	cs.stopChan = stop
	cs.wg.Add(1)
	// Use core.Go for safe execution with centralized crash handling
	core.Go(func() { cs.schedulerLoop(stop) })
}

// Stop halts the scheduler loop and waits for the in-flight tick
// No-op when the loop is not running
func (cs *ClockScheduler) Stop() {
	cs.lifeMu.Lock()
	defer cs.lifeMu.Unlock()

	if !cs.running.CompareAndSwap(true, false) {
		return
	}
	close(cs.stopChan)
	cs.wg.Wait()
}

// IsRunning reports whether the scheduler loop is active
func (cs *ClockScheduler) IsRunning() bool { return cs.running.Load() }

// schedulerLoop runs the main scheduling loop with pause awareness
func (cs *ClockScheduler) schedulerLoop(stop <-chan struct{}) {
	defer cs.wg.Done()

	cs.nextTickDeadline = time.Now().Add(cs.tickInterval)

	timer := time.NewTimer(cs.tickInterval)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		now := time.Now()
		if cs.isPaused.Load() {
			// Game time does not accumulate while paused
			cs.nextTickDeadline = now.Add(cs.tickInterval)
			timer.Reset(cs.tickInterval * 2)
			continue
		}

		if err := cs.processTick(); err != nil {
			log.Printf("tick %d failed: %v", cs.tickCount.Load()+1, err)
		}

		cs.nextTickDeadline = cs.nextTickDeadline.Add(cs.tickInterval)
		maxBehind := cs.tickInterval * 2
		if now.Sub(cs.nextTickDeadline) > maxBehind {
			// Too far behind, drop missed ticks instead of bursting
			cs.nextTickDeadline = now.Add(cs.tickInterval)
		}

		wait := time.Until(cs.nextTickDeadline)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}

// processTick advances the world once and notifies handlers
func (cs *ClockScheduler) processTick() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.world.Simulate(cs.dt); err != nil {
		return err
	}
	cs.tickCount.Add(1)

	stats := cs.world.Stats()
	for _, h := range cs.handlers {
		h(cs.world, stats)
	}
	return nil
}
