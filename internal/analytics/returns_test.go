package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vega-desktop/analytics-backend/pkg/types"
)

func curveFrom(equities ...float64) []types.EquityPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(equities))
	values := make([]decimal.Decimal, len(equities))
	for i, eq := range equities {
		dates[i] = base.AddDate(0, 0, i)
		values[i] = decimal.NewFromFloat(eq)
	}
	return BuildEquityCurve(dates, values)
}

func TestDailyReturns(t *testing.T) {
	curve := curveFrom(100000, 110000, 99000, 121000)

	returns := DailyReturns(curve)
	require.Len(t, returns, 3)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)
	assert.InDelta(t, 0.2222, returns[2], 1e-4)
}

func TestDailyReturnsSkipsNonPositiveDenominator(t *testing.T) {
	curve := curveFrom(100, 0, 50, 55)

	returns := DailyReturns(curve)
	// 100->0 yields -1; 0->50 is skipped entirely; 50->55 yields 0.10
	require.Len(t, returns, 2)
	assert.InDelta(t, -1.0, returns[0], 1e-9)
	assert.InDelta(t, 0.10, returns[1], 1e-9)
}

func TestDailyReturnsShortSeries(t *testing.T) {
	assert.Nil(t, DailyReturns(nil))
	assert.Nil(t, DailyReturns(curveFrom(100000)))
}

func TestBuildEquityCurveDrawdowns(t *testing.T) {
	curve := curveFrom(100000, 110000, 99000, 121000)
	require.Len(t, curve, 4)

	dd := func(i int) float64 {
		v, _ := curve[i].Drawdown.Float64()
		return v
	}
	assert.InDelta(t, 0.0, dd(0), 1e-9)
	assert.InDelta(t, 0.0, dd(1), 1e-9)
	assert.InDelta(t, -0.10, dd(2), 1e-9)
	assert.InDelta(t, 0.0, dd(3), 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, -0.10, MaxDrawdown(curveFrom(100000, 110000, 99000, 121000)), 1e-9)
	assert.Equal(t, 0.0, MaxDrawdown(nil))
	assert.Equal(t, 0.0, MaxDrawdown(curveFrom(100, 110, 120)))
}

func TestWithDrawdownsDoesNotMutate(t *testing.T) {
	curve := curveFrom(100, 90, 95)
	for i := range curve {
		curve[i].Drawdown = decimal.Zero
	}

	out := WithDrawdowns(curve)
	require.Len(t, out, 3)

	assert.True(t, curve[1].Drawdown.IsZero())
	ddOut, _ := out[1].Drawdown.Float64()
	assert.InDelta(t, -0.10, ddOut, 1e-9)
}

func TestReturnsFromValues(t *testing.T) {
	returns := ReturnsFromValues([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)

	assert.Nil(t, ReturnsFromValues([]float64{100}))
}
