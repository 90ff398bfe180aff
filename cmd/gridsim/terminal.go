package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gridsim/audio"
	"github.com/lixenwraith/gridsim/config"
	"github.com/lixenwraith/gridsim/core"
	"github.com/lixenwraith/gridsim/engine"
	"github.com/lixenwraith/gridsim/render"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

// app wires the scheduler, renderer and audio around one terminal screen
type app struct {
	screen    tcell.Screen
	scheduler *engine.ClockScheduler
	renderer  *render.GridRenderer
	sound     *audio.SoundManager
	info      string // detail line for the selected entity
	track     tracker
}

// tracker measures the selected entity's velocity from its observed positions
// between frames, taking the short way across wrapped edges
type tracker struct {
	last     core.Vec2
	lastTick uint64
	velocity core.Vec2
	primed   bool
}

// reset restarts measurement from a freshly selected entity
func (t *tracker) reset(pos core.Vec2, tick uint64) {
	*t = tracker{last: pos, lastTick: tick, primed: true}
}

// observe records pos at tick and returns the latest measured velocity
// Velocity is unchanged when no tick elapsed since the previous sample
func (t *tracker) observe(w *engine.World, pos core.Vec2, tick uint64, dt float64) core.Vec2 {
	if !t.primed {
		t.reset(pos, tick)
		return t.velocity
	}
	if tick > t.lastTick && dt != 0 {
		elapsed := float64(tick-t.lastTick) * dt
		t.velocity = w.Displacement(t.last, pos).Scale(1 / elapsed)
	}
	t.last = pos
	t.lastTick = tick
	return t.velocity
}

// runTerminal drives the scenario in real time until the user quits
func runTerminal(s *config.Scenario, withAudio bool) error {
	world, err := s.Build()
	if err != nil {
		return err
	}
	cs, err := engine.NewClockScheduler(world, s.TickInterval(), s.TickDelta())
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	core.SetResetHook(screen.Fini)
	defer core.SetResetHook(nil)
	screen.EnableMouse()

	cfg := audio.LoadAudioConfig()
	cfg.Enabled = cfg.Enabled && withAudio
	sound := audio.NewSoundManager(cfg)
	if err := sound.Initialize(); err != nil {
		// Non-fatal, simulation runs without sound
		log.Printf("Audio initialization failed: %v", err)
	}
	defer sound.Cleanup()

	a := &app{
		screen:    screen,
		scheduler: cs,
		renderer:  render.NewGridRenderer(screen),
		sound:     sound,
	}

	cs.OnTick(func(_ *engine.World, stats engine.TickStats) {
		if stats.LastWraps > 0 {
			sound.PlayWrap()
		}
	})
	cs.Start()
	defer cs.Stop()

	a.run()
	return nil
}

func (a *app) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	core.Go(func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	})

	for {
		select {
		case ev := <-eventChan:
			if !a.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			a.draw()
		}
	}
}

func (a *app) draw() {
	a.scheduler.View(func(w *engine.World) {
		stats := w.Stats()
		if id, ok := a.renderer.Selected(); ok {
			a.info = ""
			for _, e := range w.Entities() {
				if e.ID == id {
					v := a.track.observe(w, e.Position, stats.Ticks, a.scheduler.TickDelta())
					a.info = fmt.Sprintf("%s obs=%s", e, v)
					break
				}
			}
		}

		state := "running"
		if a.scheduler.IsPaused() {
			state = "paused"
		}
		status := fmt.Sprintf("tick %d  wraps %d  entities %d  [%s]  %s",
			stats.Ticks, stats.Wraps, w.Len(), state, a.info)
		a.renderer.Draw(w, status)
	})
}

// handleEvent returns false when the user asks to quit
func (a *app) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			if a.scheduler.IsPaused() {
				a.scheduler.Resume()
			} else {
				a.scheduler.Pause()
			}
		case ev.Key() == tcell.KeyRune && ev.Rune() == '.':
			// Single step while paused
			if a.scheduler.IsPaused() {
				if err := a.scheduler.Step(1); err != nil {
					log.Printf("step failed: %v", err)
				}
			}
		}

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return true
		}
		x, y := ev.Position()
		a.pick(x, y)

	case *tcell.EventResize:
		a.screen.Sync()
	}

	return true
}

// pick selects the entity under a screen position via the spatial index
func (a *app) pick(x, y int) {
	a.scheduler.View(func(w *engine.World) {
		e, ok := a.renderer.HitTest(w, x, y)
		if !ok {
			a.renderer.ClearSelection()
			a.info = ""
			return
		}
		a.renderer.Select(e.ID)
		a.track.reset(e.Position, w.Stats().Ticks)
		a.info = e.String()
		a.sound.PlaySelect()
		log.Printf("picked %s", e)
	})
}
