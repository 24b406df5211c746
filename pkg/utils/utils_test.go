package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
	assert.Equal(t, 0.0, Clamp(-1, 0, 10))
	assert.Equal(t, 10.0, Clamp(11, 0, 10))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.5, Clamp01(0.5))
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
}

func TestFinite(t *testing.T) {
	assert.Equal(t, 1.5, Finite(1.5, 0))
	assert.Equal(t, 0.0, Finite(math.NaN(), 0))
	assert.Equal(t, 7.0, Finite(math.Inf(1), 7))
	assert.Equal(t, 7.0, Finite(math.Inf(-1), 7))
}

func TestRoundStep(t *testing.T) {
	// 0.1 + 0.2 style drift must snap back to the grid
	assert.Equal(t, 0.3, RoundStep(0.1+0.2, 0.1, 0.1))
	assert.Equal(t, 0.15, RoundStep(0.1500000001, 0.05, 0.05))
	assert.Equal(t, 2.0, RoundStep(2, 1, 0.5))
}

func TestMeanAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))

	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.Equal(t, 0.0, StdDev([]float64{2, 2, 2}))

	// Sample standard deviation of {1,2,3,4} is sqrt(5/3)
	assert.InDelta(t, math.Sqrt(5.0/3.0), StdDev([]float64{1, 2, 3, 4}), 1e-12)
}

func TestTailReturns(t *testing.T) {
	values := []float64{100, 110, 99, 121}
	returns := TailReturns(values, 10)
	assert.Len(t, returns, 3)
	assert.InDelta(t, 0.10, returns[0], 1e-9)

	assert.Empty(t, TailReturns([]float64{100}, 5))
}

func TestPercentileRank(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	assert.Equal(t, 50.0, PercentileRank(nil, 1))
	assert.Equal(t, 0.0, PercentileRank(values, 0.5))
	assert.Equal(t, 100.0, PercentileRank(values, 5))
	assert.Equal(t, 50.0, PercentileRank(values, 2.5))
}

func TestGenerateJobID(t *testing.T) {
	id := GenerateJobID()
	assert.True(t, strings.HasPrefix(id, "opt_"))
	assert.NotEqual(t, id, GenerateJobID())
}

func TestFormatSymbol(t *testing.T) {
	assert.Equal(t, "SPY", FormatSymbol(" spy "))
	assert.Equal(t, "QQQ", FormatSymbol("QQQ"))
}
