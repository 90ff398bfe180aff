package engine

import (
	"fmt"

	"github.com/lixenwraith/gridsim/core"
	"github.com/lixenwraith/gridsim/vmath"
)

// IndexMode selects how the spatial index tracks moving entities
type IndexMode uint8

const (
	// IndexRebuild clears the grid and refills it from the entity list every tick
	IndexRebuild IndexMode = iota
	// IndexIncremental clears each entity's previous cell, if still held, before moving it
	IndexIncremental
)

func (m IndexMode) String() string {
	switch m {
	case IndexRebuild:
		return "rebuild"
	case IndexIncremental:
		return "incremental"
	default:
		return fmt.Sprintf("IndexMode(%d)", m)
	}
}

// ParseIndexMode maps a scenario/flag name to an IndexMode, empty selects rebuild
func ParseIndexMode(s string) (IndexMode, error) {
	switch s {
	case "", "rebuild":
		return IndexRebuild, nil
	case "incremental":
		return IndexIncremental, nil
	default:
		return 0, fmt.Errorf("unknown index mode %q", s)
	}
}

// Option configures a World at construction
type Option func(*World)

// WithIndexMode sets the index maintenance strategy, default IndexRebuild
func WithIndexMode(m IndexMode) Option {
	return func(w *World) { w.mode = m }
}

// WithIndexOnAdd places entities in the index as soon as they are added
// instead of on the first tick
func WithIndexOnAdd(enabled bool) Option {
	return func(w *World) { w.indexOnAdd = enabled }
}

// TickStats are cumulative counters maintained by Simulate
type TickStats struct {
	Ticks     uint64
	Wraps     uint64 // entity-axis crossings of a grid edge since construction
	LastWraps int    // crossings during the most recent tick
}

// World is the entity store and simulator for a fixed toroidal grid.
// Entities live in an insertion-ordered arena of shared instances; the SpatialGrid
// holds arena references for O(1) point lookups.
//
// A World is single-owner: it does no locking and must not be mutated while a
// Simulate call is in progress. ClockScheduler provides guarded access.
type World struct {
	width, height int

	entities []*core.Entity
	indexed  []int // last cell written per slot (y*width+x), -1 when not indexed
	grid     *SpatialGrid

	mode       IndexMode
	indexOnAdd bool

	stats TickStats
}

// NewWorld creates a world with a width x height grid
// Non-positive dimensions are rejected with ErrInvalidDimensions
func NewWorld(width, height int, opts ...Option) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid %dx%d: %w", width, height, ErrInvalidDimensions)
	}

	w := &World{
		width:    width,
		height:   height,
		entities: make([]*core.Entity, 0),
		indexed:  make([]int, 0),
		grid:     NewSpatialGrid(width, height),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Width returns the grid width in cells
func (w *World) Width() int { return w.width }

// Height returns the grid height in cells
func (w *World) Height() int { return w.height }

// Mode returns the index maintenance strategy
func (w *World) Mode() IndexMode { return w.mode }

// Len returns the number of stored entities
func (w *World) Len() int { return len(w.entities) }

// Stats returns the tick counters
func (w *World) Stats() TickStats { return w.stats }

// AddEntity appends a copy of e to the store and returns the shared instance
// Ids are not checked for uniqueness
func (w *World) AddEntity(e core.Entity) *core.Entity {
	ent := &e
	w.entities = append(w.entities, ent)
	w.indexed = append(w.indexed, -1)

	if w.indexOnAdd {
		w.place(len(w.entities) - 1)
	}
	return ent
}

// RemoveEntity deletes the first entity with the given id, preserving the order of the rest
// Returns false if no entity has that id
func (w *World) RemoveEntity(id int) bool {
	slot := -1
	for i, e := range w.entities {
		if e.ID == id {
			slot = i
			break
		}
	}
	if slot < 0 {
		return false
	}

	w.entities = append(w.entities[:slot], w.entities[slot+1:]...)
	w.indexed = append(w.indexed[:slot], w.indexed[slot+1:]...)

	// Slots after the removed one shifted, so every stored Ref is re-derived
	w.reindex()
	return true
}

// Entities returns the stored entities in insertion order
// The slice is a copy; the entities are the live shared instances
func (w *World) Entities() []*core.Entity {
	out := make([]*core.Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// Simulate advances every entity by dt seconds in insertion order
// Negative dt integrates backwards. NaN or infinite dt is rejected and nothing changes
func (w *World) Simulate(dt float64) error {
	if !vmath.IsFinite(dt) {
		return fmt.Errorf("simulate dt=%v: %w", dt, ErrNonFiniteDelta)
	}

	if w.mode == IndexRebuild {
		w.clearIndex()
	}

	w.stats.LastWraps = 0
	for slot := range w.entities {
		w.updateEntity(slot, dt)
	}
	w.stats.Ticks++
	w.stats.Wraps += uint64(w.stats.LastWraps)

	return nil
}

// EntityAt returns the entity occupying the cell containing p
// Empty cells, out-of-bounds and non-finite points report false
func (w *World) EntityAt(p core.Vec2) (*core.Entity, bool) {
	cx, okX := vmath.Cell(p.X)
	cy, okY := vmath.Cell(p.Y)
	if !okX || !okY {
		return nil, false
	}
	ref, ok := w.grid.Get(cx, cy)
	if !ok {
		return nil, false
	}
	return w.entities[ref-1], true
}

// Displacement returns the shortest vector from a to b across the wrapped edges
func (w *World) Displacement(a, b core.Vec2) core.Vec2 {
	return core.Vec2{
		X: vmath.TorusDelta(a.X, b.X, float64(w.width)),
		Y: vmath.TorusDelta(a.Y, b.Y, float64(w.height)),
	}
}

// updateEntity integrates one entity, wraps it onto the torus and rewrites its index cell
func (w *World) updateEntity(slot int, dt float64) {
	e := w.entities[slot]

	if w.mode == IndexIncremental {
		if c := w.indexed[slot]; c >= 0 {
			w.grid.ClearIfHolds(Ref(slot+1), c%w.width, c/w.width)
		}
		w.indexed[slot] = -1
	}

	next := e.Position.Add(e.Velocity.Scale(dt))
	wrapped := core.Vec2{
		X: vmath.Wrap(next.X, float64(w.width)),
		Y: vmath.Wrap(next.Y, float64(w.height)),
	}
	if vmath.IsFinite(next.X) && wrapped.X != next.X {
		w.stats.LastWraps++
	}
	if vmath.IsFinite(next.Y) && wrapped.Y != next.Y {
		w.stats.LastWraps++
	}
	e.Position = wrapped

	w.place(slot)
}

// place writes the slot's reference at the cell under its current position
func (w *World) place(slot int) {
	e := w.entities[slot]
	cx, okX := vmath.Cell(e.Position.X)
	cy, okY := vmath.Cell(e.Position.Y)
	if !okX || !okY {
		return
	}
	if w.grid.Set(Ref(slot+1), cx, cy) {
		w.indexed[slot] = cy*w.width + cx
	}
}

func (w *World) clearIndex() {
	w.grid.Clear()
	for i := range w.indexed {
		w.indexed[i] = -1
	}
}

// reindex replays recorded cells in insertion order, reproducing last-write-wins
func (w *World) reindex() {
	w.grid.Clear()
	for slot, c := range w.indexed {
		if c >= 0 {
			w.grid.Set(Ref(slot+1), c%w.width, c/w.width)
		}
	}
}
