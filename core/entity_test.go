package core

import "testing"

func TestVec2_AddScale(t *testing.T) {
	p := Vec2{X: 1, Y: 2}
	v := Vec2{X: -0.5, Y: 4}

	got := p.Add(v.Scale(2))
	if got.X != 0 || got.Y != 10 {
		t.Errorf("Expected (0, 10), got %v", got)
	}

	// Originals are values, untouched
	if p.X != 1 || v.Y != 4 {
		t.Errorf("Operands mutated: p=%v v=%v", p, v)
	}
}

func TestEntity_SharedInstance(t *testing.T) {
	e := &Entity{ID: 7, Name: "probe", Position: Vec2{X: 1, Y: 1}}
	alias := e

	alias.Position = alias.Position.Add(Vec2{X: 2})
	if e.Position.X != 3 {
		t.Errorf("Expected shared instance to observe update, got %v", e.Position)
	}
}

func TestSetResetHook_Clear(t *testing.T) {
	called := false
	SetResetHook(func() { called = true })
	if fn := resetHook.Load(); fn == nil {
		t.Fatal("Expected hook to be stored")
	} else {
		(*fn)()
	}
	if !called {
		t.Error("Expected stored hook to be callable")
	}

	SetResetHook(nil)
	if resetHook.Load() != nil {
		t.Error("Expected hook to be cleared")
	}
}
