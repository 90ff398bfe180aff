// Package config loads simulation scenarios from YAML files
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/gridsim/core"
	"github.com/lixenwraith/gridsim/engine"
	"github.com/lixenwraith/gridsim/vmath"
)

// DefaultTickRate is used when a scenario leaves tick_rate unset
const DefaultTickRate = 60

// ErrInvalidScenario wraps every validation failure
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario describes a grid and its initial entities
type Scenario struct {
	Grid       GridConfig     `yaml:"grid"`
	TickRate   int            `yaml:"tick_rate"`  // ticks per simulated second
	IndexMode  string         `yaml:"index_mode"` // rebuild | incremental
	IndexOnAdd bool           `yaml:"index_on_add"`
	Spawn      *SpawnConfig   `yaml:"spawn,omitempty"`
	Entities   []EntityConfig `yaml:"entities"`
}

// GridConfig holds the toroidal grid size in cells
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// EntityConfig is one explicitly placed entity
type EntityConfig struct {
	ID       int       `yaml:"id"`
	Name     string    `yaml:"name"`
	Position []float64 `yaml:"position"` // [x, y]
	Velocity []float64 `yaml:"velocity"` // [vx, vy], cells per second
}

// SpawnConfig adds randomly placed entities after the explicit ones
type SpawnConfig struct {
	Count    int     `yaml:"count"`
	Seed     uint64  `yaml:"seed"`
	MaxSpeed float64 `yaml:"max_speed"`
}

// Default returns the two-entity 10x10 demo scenario
func Default() *Scenario {
	return &Scenario{
		Grid:     GridConfig{Width: 10, Height: 10},
		TickRate: DefaultTickRate,
		Entities: []EntityConfig{
			{ID: 1, Name: "Entity 1", Position: []float64{0, 0}, Velocity: []float64{1, 0}},
			{ID: 2, Name: "Entity 2", Position: []float64{5, 5}, Velocity: []float64{0, -1}},
		},
	}
}

// Load reads and validates a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML scenario data, applies defaults and validates it
// Unknown keys are rejected
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	if s.TickRate == 0 {
		s.TickRate = DefaultTickRate
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scenario without building it
func (s *Scenario) Validate() error {
	if s.Grid.Width <= 0 || s.Grid.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d must be positive", ErrInvalidScenario, s.Grid.Width, s.Grid.Height)
	}
	if s.TickRate < 0 {
		return fmt.Errorf("%w: tick_rate %d must not be negative", ErrInvalidScenario, s.TickRate)
	}
	if _, err := engine.ParseIndexMode(s.IndexMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	seen := make(map[int]bool, len(s.Entities))
	for i, e := range s.Entities {
		if seen[e.ID] {
			return fmt.Errorf("%w: entities[%d]: duplicate id %d", ErrInvalidScenario, i, e.ID)
		}
		seen[e.ID] = true

		if err := checkPair(e.Position); err != nil {
			return fmt.Errorf("%w: entities[%d] position: %v", ErrInvalidScenario, i, err)
		}
		if err := checkPair(e.Velocity); err != nil {
			return fmt.Errorf("%w: entities[%d] velocity: %v", ErrInvalidScenario, i, err)
		}
	}

	if sp := s.Spawn; sp != nil {
		if sp.Count < 0 {
			return fmt.Errorf("%w: spawn count %d must not be negative", ErrInvalidScenario, sp.Count)
		}
		if sp.MaxSpeed < 0 || !vmath.IsFinite(sp.MaxSpeed) {
			return fmt.Errorf("%w: spawn max_speed %v must be finite and non-negative", ErrInvalidScenario, sp.MaxSpeed)
		}
	}
	return nil
}

// TickInterval returns the duration of one tick at the scenario rate
func (s *Scenario) TickInterval() time.Duration {
	rate := s.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return time.Second / time.Duration(rate)
}

// TickDelta returns the simulated seconds per tick, exactly 1/rate
func (s *Scenario) TickDelta() float64 {
	rate := s.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return 1 / float64(rate)
}

// Build validates the scenario and creates a populated world
// Spawned entities get ids above the highest explicit id
func (s *Scenario) Build() (*engine.World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	mode, _ := engine.ParseIndexMode(s.IndexMode)
	w, err := engine.NewWorld(s.Grid.Width, s.Grid.Height,
		engine.WithIndexMode(mode),
		engine.WithIndexOnAdd(s.IndexOnAdd),
	)
	if err != nil {
		return nil, err
	}

	maxID := 0
	for _, e := range s.Entities {
		w.AddEntity(core.Entity{
			ID:       e.ID,
			Name:     e.Name,
			Position: core.Vec2{X: e.Position[0], Y: e.Position[1]},
			Velocity: core.Vec2{X: e.Velocity[0], Y: e.Velocity[1]},
		})
		maxID = max(maxID, e.ID)
	}

	if sp := s.Spawn; sp != nil && sp.Count > 0 {
		rng := vmath.NewFastRand(sp.Seed)
		width, height := float64(s.Grid.Width), float64(s.Grid.Height)
		for i := 0; i < sp.Count; i++ {
			id := maxID + 1 + i
			w.AddEntity(core.Entity{
				ID:       id,
				Name:     fmt.Sprintf("spawn-%d", id),
				Position: core.Vec2{X: rng.Range(0, width), Y: rng.Range(0, height)},
				Velocity: core.Vec2{X: rng.Range(-sp.MaxSpeed, sp.MaxSpeed), Y: rng.Range(-sp.MaxSpeed, sp.MaxSpeed)},
			})
		}
	}

	return w, nil
}

// Marshal encodes the scenario back to YAML
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func checkPair(v []float64) error {
	if len(v) != 2 {
		return fmt.Errorf("expected [x, y], got %d values", len(v))
	}
	if !vmath.IsFinite(v[0]) || !vmath.IsFinite(v[1]) {
		return fmt.Errorf("non-finite value %v", v)
	}
	return nil
}
