package engine

import "testing"

func TestSpatialGrid_SetGet(t *testing.T) {
	g := NewSpatialGrid(4, 3)

	if !g.Set(5, 3, 2) {
		t.Fatal("Expected Set inside bounds to succeed")
	}
	if ref, ok := g.Get(3, 2); !ok || ref != 5 {
		t.Errorf("Expected ref 5 at (3, 2), got %d (ok=%v)", ref, ok)
	}
	if _, ok := g.Get(2, 2); ok {
		t.Error("Expected empty cell at (2, 2)")
	}
}

func TestSpatialGrid_OutOfBounds(t *testing.T) {
	g := NewSpatialGrid(4, 3)

	coords := [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}, {100, 100}, {-100, -100}}
	for _, c := range coords {
		if g.Set(1, c[0], c[1]) {
			t.Errorf("Expected Set at %v to fail", c)
		}
		if _, ok := g.Get(c[0], c[1]); ok {
			t.Errorf("Expected Get at %v to miss", c)
		}
		// Must not panic
		g.ClearIfHolds(1, c[0], c[1])
	}
	if g.Occupied() != 0 {
		t.Errorf("Expected no occupied cells, got %d", g.Occupied())
	}
}

func TestSpatialGrid_LastWriteWins(t *testing.T) {
	g := NewSpatialGrid(2, 2)
	g.Set(1, 1, 1)
	g.Set(2, 1, 1)

	if ref, _ := g.Get(1, 1); ref != 2 {
		t.Errorf("Expected later write to win, got %d", ref)
	}
}

func TestSpatialGrid_ClearIfHolds(t *testing.T) {
	g := NewSpatialGrid(2, 2)
	g.Set(1, 0, 0)
	g.Set(2, 0, 0)

	// Cell now belongs to ref 2; ref 1 must not evict it
	g.ClearIfHolds(1, 0, 0)
	if ref, ok := g.Get(0, 0); !ok || ref != 2 {
		t.Errorf("Expected ref 2 to survive, got %d (ok=%v)", ref, ok)
	}

	g.ClearIfHolds(2, 0, 0)
	if _, ok := g.Get(0, 0); ok {
		t.Error("Expected cell to be cleared by its holder")
	}
}

func TestSpatialGrid_Clear(t *testing.T) {
	g := NewSpatialGrid(3, 3)
	g.Set(1, 0, 0)
	g.Set(2, 2, 2)
	if g.Occupied() != 2 {
		t.Fatalf("Expected 2 occupied cells, got %d", g.Occupied())
	}

	g.Clear()
	if g.Occupied() != 0 {
		t.Errorf("Expected empty grid after Clear, got %d", g.Occupied())
	}
}
