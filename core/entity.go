package core

import "fmt"

// Vec2 is a 2D point or vector in continuous grid coordinates
type Vec2 struct {
	X, Y float64
}

// Add returns v+o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v*f component-wise
func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", v.X, v.Y)
}

// Entity is a simulated object. ID and Name are identity and never change once the
// entity is handed to a World. Position and Velocity are kinematic state mutated in
// place by every tick, so all holders of the same *Entity observe the latest values.
type Entity struct {
	ID   int
	Name string

	// Position in grid units, wrapped into [0, width) x [0, height) by each tick
	Position Vec2
	// Velocity in grid units per second
	Velocity Vec2
}

func (e *Entity) String() string {
	return fmt.Sprintf("#%d %q pos=%s vel=%s", e.ID, e.Name, e.Position, e.Velocity)
}
