package utils

import "math"

// LCG is a seeded 32-bit linear congruential generator:
// state = (state*1664525 + 1013904223) mod 2^32, normalized to [0, 1).
// The same seed always reproduces the same sequence, which is what makes
// synthetic series and simulator reproductions byte-identical across runs.
// Not safe for concurrent use; create one per series.
type LCG struct {
	state uint32
}

// NewLCG creates a generator from a seed.
func NewLCG(seed int64) *LCG {
	return &LCG{state: uint32(seed)}
}

// Float64 returns the next value in [0, 1).
func (g *LCG) Float64() float64 {
	g.state = g.state*1664525 + 1013904223
	return float64(g.state) / 4294967296.0
}

// NormFloat64 returns a standard normal variate via the Box-Muller
// transform, driven by two LCG draws.
func (g *LCG) NormFloat64() float64 {
	u1 := g.Float64()
	u2 := g.Float64()
	if u1 <= 0 {
		u1 = 1.0 / 4294967296.0
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
