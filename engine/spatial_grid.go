package engine

// Ref is a non-owning handle into the World entity arena, slot index + 1
// The zero value marks an empty cell
type Ref int32

// NoRef is the empty cell marker
const NoRef Ref = 0

// SpatialGrid is a dense 2D grid holding at most one entity reference per cell
// Single occupancy: a later Set on an occupied cell overwrites it (last write wins)
type SpatialGrid struct {
	Width  int
	Height int
	Cells  []Ref // 1D array: index = y*Width + x
}

// NewSpatialGrid creates a new grid with the specified dimensions
func NewSpatialGrid(width, height int) *SpatialGrid {
	return &SpatialGrid{
		Width:  width,
		Height: height,
		Cells:  make([]Ref, width*height),
	}
}

// InBounds reports whether (x, y) addresses a cell of the grid
func (g *SpatialGrid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Set stores ref at (x, y), replacing any previous occupant
// O(1), Returns false if bounds invalid
func (g *SpatialGrid) Set(ref Ref, x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.Cells[y*g.Width+x] = ref
	return true
}

// Get returns the reference at (x, y)
// O(1), ok is false if empty or out of bounds
func (g *SpatialGrid) Get(x, y int) (Ref, bool) {
	if !g.InBounds(x, y) {
		return NoRef, false
	}
	ref := g.Cells[y*g.Width+x]
	return ref, ref != NoRef
}

// ClearIfHolds empties (x, y) only if it still holds ref
// A cell overwritten by another entity is left alone
func (g *SpatialGrid) ClearIfHolds(ref Ref, x, y int) {
	if !g.InBounds(x, y) {
		return
	}
	idx := y*g.Width + x
	if g.Cells[idx] == ref {
		g.Cells[idx] = NoRef
	}
}

// Clear removes all references from all cells
func (g *SpatialGrid) Clear() {
	clear(g.Cells)
}

// Occupied returns the number of non-empty cells. O(cells)
func (g *SpatialGrid) Occupied() int {
	n := 0
	for _, ref := range g.Cells {
		if ref != NoRef {
			n++
		}
	}
	return n
}
