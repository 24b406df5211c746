// Package analytics provides return-series derivation and risk-adjusted
// performance statistics over equity curves.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vega-desktop/analytics-backend/pkg/types"
)

// DailyReturns derives simple daily returns from an equity curve.
// The output is one element shorter than the input. Points whose previous
// equity is non-positive are skipped, not zero-filled, so positional
// alignment with the input is not guaranteed when such values occur.
func DailyReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev.LessThanOrEqual(decimal.Zero) {
			continue
		}
		ret := curve[i].Equity.Sub(prev).Div(prev)
		retFloat, _ := ret.Float64()
		returns = append(returns, retFloat)
	}

	return returns
}

// ReturnsFromValues derives simple returns from a raw value series,
// skipping non-positive denominators.
func ReturnsFromValues(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}

	return returns
}

// BuildEquityCurve constructs an equity curve from dated equity values,
// deriving each point's drawdown from the running peak:
// drawdown[i] = (equity[i] - runningMax[i]) / runningMax[i].
func BuildEquityCurve(dates []time.Time, equities []decimal.Decimal) []types.EquityPoint {
	curve := make([]types.EquityPoint, 0, len(equities))

	peak := decimal.Zero
	for i, eq := range equities {
		if i >= len(dates) {
			break
		}
		if eq.GreaterThan(peak) {
			peak = eq
		}

		dd := decimal.Zero
		if peak.GreaterThan(decimal.Zero) {
			dd = eq.Sub(peak).Div(peak)
		}

		curve = append(curve, types.EquityPoint{
			Date:     dates[i],
			Equity:   eq,
			Drawdown: dd,
		})
	}

	return curve
}

// WithDrawdowns returns a copy of the curve with drawdowns recomputed
// from the running peak. Input points are not mutated.
func WithDrawdowns(curve []types.EquityPoint) []types.EquityPoint {
	out := make([]types.EquityPoint, len(curve))

	peak := decimal.Zero
	for i, p := range curve {
		if p.Equity.GreaterThan(peak) {
			peak = p.Equity
		}

		dd := decimal.Zero
		if peak.GreaterThan(decimal.Zero) {
			dd = p.Equity.Sub(peak).Div(peak)
		}

		out[i] = types.EquityPoint{Date: p.Date, Equity: p.Equity, Drawdown: dd}
	}

	return out
}

// MaxDrawdown returns the deepest drawdown of the curve as a non-positive
// fraction of the running peak.
func MaxDrawdown(curve []types.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	maxDD := 0.0
	peak := curve[0].Equity
	for _, p := range curve {
		if p.Equity.GreaterThan(peak) {
			peak = p.Equity
		}
		if peak.GreaterThan(decimal.Zero) {
			dd, _ := p.Equity.Sub(peak).Div(peak).Float64()
			if dd < maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}
