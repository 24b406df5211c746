package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLCGDeterminism(t *testing.T) {
	a := NewLCG(42)
	b := NewLCG(42)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "sequence diverged at draw %d", i)
	}
}

func TestLCGSeedSensitivity(t *testing.T) {
	a := NewLCG(42)
	b := NewLCG(43)

	same := 0
	for i := 0; i < 100; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 5)
}

func TestLCGRange(t *testing.T) {
	g := NewLCG(7)
	for i := 0; i < 1000; i++ {
		v := g.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestNormFloat64Moments(t *testing.T) {
	g := NewLCG(1)

	n := 10000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := g.NormFloat64()
		require.False(t, math.IsNaN(v))
		sum += v
		sumSq += v * v
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean

	assert.InDelta(t, 0, mean, 0.05)
	assert.InDelta(t, 1, variance, 0.1)
}
