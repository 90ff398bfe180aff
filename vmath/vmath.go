package vmath

import "math"

// --- Toroidal arithmetic ---

// Wrap maps v into [0, size) using mathematical modulo
// Negative inputs wrap from the far edge; a result that rounds up to size folds to 0
func Wrap(v, size float64) float64 {
	r := math.Mod(v, size)
	if r < 0 {
		r += size
	}
	// -tiny + size can round to exactly size in float64
	if r >= size {
		r = 0
	}
	return r
}

// Cell returns the integer cell containing coordinate v, floor semantics
// ok is false for NaN and values outside the int range
func Cell(v float64) (c int, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	f := math.Floor(v)
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// TorusDelta returns the signed shortest displacement from a to b on a ring of length size
func TorusDelta(a, b, size float64) float64 {
	d := Wrap(b-a, size)
	if d > size/2 {
		d -= size
	}
	return d
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// --- Randomness ---

// FastRand is a xorshift64 generator for reproducible scenario spawning
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float64 returns a value in [0, 1) from the top 53 bits
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// Range returns a value in [lo, hi)
func (r *FastRand) Range(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
