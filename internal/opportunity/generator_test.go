package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/pkg/types"
)

func inputs(regime types.Regime, confidence, ivRank float64) Inputs {
	return Inputs{
		Symbol: "SPY",
		Classification: types.RegimeClassification{
			Regime:     regime,
			Confidence: confidence,
		},
		IV: types.IvMetrics{IVRank: ivRank, Term: 0.1, Skew: -0.05, Confidence: 0.9},
	}
}

func strategyIDs(opportunities []types.Opportunity) []string {
	ids := make([]string, len(opportunities))
	for i, o := range opportunities {
		ids[i] = o.StrategyID
	}
	return ids
}

func TestGenerateSidewaysHighIV(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	out := g.Generate(inputs(types.RegimeSidewaysHighVol, 0.8, 75))
	ids := strategyIDs(out)
	assert.Contains(t, ids, "iron_condor")
	assert.Contains(t, ids, "wheel")
	assert.NotContains(t, ids, "leveraged_diagonal")
	assert.NotContains(t, ids, "credit_spread")
}

func TestGenerateBullLowIV(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	out := g.Generate(inputs(types.RegimeBullTrend, 0.7, 30))
	ids := strategyIDs(out)
	assert.Contains(t, ids, "leveraged_diagonal")
	assert.Contains(t, ids, "covered_income")
	assert.NotContains(t, ids, "iron_condor")
	assert.NotContains(t, ids, "wheel")
}

func TestGenerateBearTrend(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	out := g.Generate(inputs(types.RegimeBearTrend, 0.65, 55))
	ids := strategyIDs(out)
	assert.Contains(t, ids, "credit_spread")
	assert.Contains(t, ids, "wheel")
	assert.NotContains(t, ids, "leveraged_diagonal")
}

func TestGenerateEventRisk(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	out := g.Generate(inputs(types.RegimeEventRisk, 0.9, 85))
	ids := strategyIDs(out)
	assert.Contains(t, ids, "credit_spread")
	assert.Contains(t, ids, "covered_income")

	// Event-risk covered calls tighten up
	for _, o := range out {
		if o.StrategyID == "covered_income" {
			assert.Equal(t, 21, o.HorizonDays)
			assert.Equal(t, 0.20, o.SimulatorParams["callDelta"])
		}
	}
}

func TestGenerateNoApplicableRules(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	// Sideways with depressed IV matches nothing
	out := g.Generate(inputs(types.RegimeSidewaysLowVol, 0.6, 10))
	assert.Empty(t, out)
}

func TestGenerateOrderingAndCap(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	scenarios := []Inputs{
		inputs(types.RegimeSidewaysHighVol, 0.8, 75),
		inputs(types.RegimeBullTrend, 0.7, 50),
		inputs(types.RegimeBearTrend, 0.65, 90),
		inputs(types.RegimeEventRisk, 0.9, 95),
	}

	for _, in := range scenarios {
		out := g.Generate(in)
		assert.LessOrEqual(t, len(out), 6)

		for i := 1; i < len(out); i++ {
			prev := out[i-1].Confidence * out[i-1].ExpectedReturn
			cur := out[i].Confidence * out[i].ExpectedReturn
			assert.GreaterOrEqual(t, prev, cur, "ordering violated at %d for %s", i, in.Classification.Regime)
		}
	}
}

func TestGenerateConfidenceScaledByClassifier(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	high := g.Generate(inputs(types.RegimeBullTrend, 0.9, 30))
	low := g.Generate(inputs(types.RegimeBullTrend, 0.45, 30))
	require.NotEmpty(t, high)
	require.Equal(t, len(high), len(low))

	for i := range high {
		assert.Greater(t, high[i].Confidence, low[i].Confidence)
		assert.GreaterOrEqual(t, high[i].Confidence, 0.0)
		assert.LessOrEqual(t, high[i].Confidence, 1.0)
	}
}

func TestGenerateEveryOpportunityCarriesRationale(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	out := g.Generate(inputs(types.RegimeSidewaysHighVol, 0.8, 75))
	require.NotEmpty(t, out)
	for _, o := range out {
		assert.NotEmpty(t, o.Rationale)
		assert.NotEmpty(t, o.SimulatorParams["strategy"])
		assert.Greater(t, o.ExpectedReturn, 0.0)
		assert.Greater(t, o.MaxRisk, 0.0)
		assert.Greater(t, o.HorizonDays, 0)
	}
}

func TestRuleTableOrder(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	names := make([]string, 0, len(g.Rules()))
	for _, r := range g.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"iron_condor", "leveraged_diagonal", "wheel", "credit_spread", "covered_income"}, names)
}
