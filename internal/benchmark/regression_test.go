package benchmark

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/internal/analytics"
	"github.com/vega-desktop/analytics-backend/pkg/types"
)

func datedCurve(start time.Time, equities ...float64) []types.EquityPoint {
	dates := make([]time.Time, len(equities))
	values := make([]decimal.Decimal, len(equities))
	for i, eq := range equities {
		dates[i] = start.AddDate(0, 0, i)
		values[i] = decimal.NewFromFloat(eq)
	}
	return analytics.BuildEquityCurve(dates, values)
}

func TestCompareNeutralDefaultsUnderTwoPoints(t *testing.T) {
	e := NewRegressionEngine(zap.NewNop())
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	cases := map[string]struct {
		strategy []types.EquityPoint
		bench    []types.EquityPoint
	}{
		"both empty":      {nil, nil},
		"empty benchmark": {datedCurve(start, 100, 110), nil},
		"no overlap": {
			datedCurve(start, 100, 110, 105),
			datedCurve(start.AddDate(1, 0, 0), 100, 101, 102),
		},
		"single shared date": {
			datedCurve(start, 100, 110),
			datedCurve(start, 100),
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			m := e.Compare(tc.strategy, tc.bench)
			assert.Equal(t, 1.0, m.Beta)
			assert.Equal(t, 0.0, m.Alpha)
			assert.Equal(t, 0.0, m.Correlation)
			assert.Equal(t, 0.0, m.TrackingError)
			assert.Equal(t, 0.0, m.InformationRatio)
			assert.LessOrEqual(t, m.AlignedPoints, 1)
		})
	}
}

func TestCompareIdenticalSeries(t *testing.T) {
	e := NewRegressionEngine(zap.NewNop())
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	curve := datedCurve(start, 100, 104, 101, 108, 112, 109, 115)
	m := e.Compare(curve, curve)

	assert.InDelta(t, 1.0, m.Beta, 1e-9)
	assert.InDelta(t, 1.0, m.Correlation, 1e-9)
	assert.InDelta(t, 0.0, m.Alpha, 1e-9)
	assert.InDelta(t, 0.0, m.TrackingError, 1e-9)
	assert.Equal(t, 0.0, m.InformationRatio)
	assert.Equal(t, m.SharpeStrategy, m.SharpeBenchmark)
	assert.Equal(t, 7, m.AlignedPoints)
}

func TestCompareAlignsByExactDateKey(t *testing.T) {
	e := NewRegressionEngine(zap.NewNop())
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	strategy := datedCurve(start, 100, 102, 104, 106, 108)

	// Benchmark misses the middle date and carries extra trailing days
	bench := append(
		datedCurve(start, 200, 202),
		datedCurve(start.AddDate(0, 0, 3), 206, 208, 210, 212)...,
	)

	m := e.Compare(strategy, bench)
	assert.Equal(t, 4, m.AlignedPoints)
}

func TestCompareFlatBenchmarkKeepsBetaNeutral(t *testing.T) {
	e := NewRegressionEngine(zap.NewNop())
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	strategy := datedCurve(start, 100, 105, 98, 107)
	bench := datedCurve(start, 100, 100, 100, 100)

	m := e.Compare(strategy, bench)
	assert.Equal(t, 1.0, m.Beta)
	assert.Equal(t, 0.0, m.Correlation)
	assert.False(t, math.IsNaN(m.Alpha))
}

func TestCompareScaledSeriesBeta(t *testing.T) {
	e := NewRegressionEngine(zap.NewNop())
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	// Strategy daily returns are exactly 2x the benchmark's
	bench := datedCurve(start, 100, 101, 99.99, 101.5)
	benchReturns := analytics.DailyReturns(bench)
	require.Len(t, benchReturns, 3)

	equities := []float64{100}
	for _, r := range benchReturns {
		equities = append(equities, equities[len(equities)-1]*(1+2*r))
	}
	strategy := datedCurve(start, equities...)

	m := e.Compare(strategy, bench)
	assert.InDelta(t, 2.0, m.Beta, 1e-6)
	assert.InDelta(t, 1.0, m.Correlation, 1e-6)
}

func TestCompareOutputsAlwaysFinite(t *testing.T) {
	e := NewRegressionEngine(zap.NewNop())
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	strategy := datedCurve(start, 100, 0, 0, 100)
	bench := datedCurve(start, 0, 0, 0, 0)

	m := e.Compare(strategy, bench)
	for name, v := range map[string]float64{
		"alpha":            m.Alpha,
		"beta":             m.Beta,
		"correlation":      m.Correlation,
		"trackingError":    m.TrackingError,
		"informationRatio": m.InformationRatio,
		"sharpeStrategy":   m.SharpeStrategy,
		"sharpeBenchmark":  m.SharpeBenchmark,
	} {
		assert.False(t, math.IsNaN(v), "%s is NaN", name)
		assert.False(t, math.IsInf(v, 0), "%s is Inf", name)
	}
}
