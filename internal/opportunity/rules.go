package opportunity

import (
	"fmt"
	"math"

	"github.com/vega-desktop/analytics-backend/pkg/types"
)

// Inputs are the evaluated market conditions a rule sees.
type Inputs struct {
	Symbol         string
	Classification types.RegimeClassification
	IV             types.IvMetrics
}

// Rule conditionally emits one candidate strategy configuration. Rules
// are evaluated in order; each either applies or stays silent.
type Rule struct {
	Name    string
	Applies func(Inputs) bool
	Build   func(Inputs) types.Opportunity
}

func sideways(r types.Regime) bool {
	return r == types.RegimeSidewaysLowVol || r == types.RegimeSidewaysHighVol
}

// defaultRules is the ordered strategy rule table.
func defaultRules() []Rule {
	return []Rule{
		{
			Name: "iron_condor",
			Applies: func(in Inputs) bool {
				return sideways(in.Classification.Regime) && in.IV.IVRank >= 50
			},
			Build: buildIronCondor,
		},
		{
			Name: "leveraged_diagonal",
			Applies: func(in Inputs) bool {
				return in.Classification.Regime == types.RegimeBullTrend && in.IV.IVRank <= 60
			},
			Build: buildLeveragedDiagonal,
		},
		{
			Name: "wheel",
			Applies: func(in Inputs) bool {
				return in.IV.IVRank >= 40
			},
			Build: buildWheel,
		},
		{
			Name: "credit_spread",
			Applies: func(in Inputs) bool {
				r := in.Classification.Regime
				return r == types.RegimeBearTrend ||
					(r == types.RegimeEventRisk && in.IV.IVRank >= 70)
			},
			Build: buildCreditSpread,
		},
		{
			Name: "covered_income",
			Applies: func(in Inputs) bool {
				r := in.Classification.Regime
				return r == types.RegimeBullTrend || r == types.RegimeEventRisk
			},
			Build: buildCoveredIncome,
		},
	}
}

func buildIronCondor(in Inputs) types.Opportunity {
	// Richer premium supports tighter wings and shorter expiry.
	shortDelta := 0.16
	expiry := 45
	if in.IV.IVRank >= 70 {
		shortDelta = 0.12
	}
	if in.Classification.Regime == types.RegimeSidewaysHighVol {
		expiry = 30
	}

	mult := 0.7 + 0.3*math.Min(1, (in.IV.IVRank-50)/40)

	return types.Opportunity{
		StrategyID: "iron_condor",
		Rationale: []string{
			"Range-bound market favors premium collection on both sides",
			fmt.Sprintf("IV rank %.0f offers rich premium for defined-risk wings", in.IV.IVRank),
			fmt.Sprintf("Short strikes near %.0f delta balance credit against assignment risk", shortDelta*100),
		},
		Confidence:     scaled(in, mult),
		ExpectedReturn: 0.18,
		MaxRisk:        0.10,
		HorizonDays:    expiry,
		SimulatorParams: map[string]any{
			"strategy":   "iron_condor",
			"shortDelta": shortDelta,
			"wingWidth":  5.0,
			"dte":        expiry,
		},
	}
}

func buildLeveragedDiagonal(in Inputs) types.Opportunity {
	// Cheap long-dated options when IV is subdued; the short leg rolls
	// toward lower delta as IV rank climbs.
	shortDelta := 0.30 - 0.10*math.Min(1, in.IV.IVRank/60)
	mult := 0.7 + 0.3*(1-math.Min(1, in.IV.IVRank/60))

	return types.Opportunity{
		StrategyID: "leveraged_diagonal",
		Rationale: []string{
			"Uptrend supports long delta exposure with defined cost basis",
			fmt.Sprintf("IV rank %.0f keeps the long leg inexpensive", in.IV.IVRank),
			"Short leg finances theta while the trend develops",
		},
		Confidence:     scaled(in, mult),
		ExpectedReturn: 0.35,
		MaxRisk:        0.25,
		HorizonDays:    90,
		SimulatorParams: map[string]any{
			"strategy":     "leveraged_diagonal",
			"longDelta":    0.75,
			"shortDelta":   round2(shortDelta),
			"longDte":      180,
			"shortDte":     30,
		},
	}
}

func buildWheel(in Inputs) types.Opportunity {
	// Assignment cycle: sell puts, take assignment, sell calls. Bear
	// trends call for wider strikes and a longer cycle.
	putDelta := 0.30
	cycleDays := 30
	if in.Classification.Regime == types.RegimeBearTrend {
		putDelta = 0.20
		cycleDays = 45
	}

	mult := 0.6 + 0.4*math.Min(1, (in.IV.IVRank-40)/40)

	return types.Opportunity{
		StrategyID: "wheel",
		Rationale: []string{
			fmt.Sprintf("IV rank %.0f makes cash-secured puts attractive to sell", in.IV.IVRank),
			fmt.Sprintf("Assignment cycle at %.0f delta keeps cost basis below market", putDelta*100),
		},
		Confidence:     scaled(in, mult),
		ExpectedReturn: 0.15,
		MaxRisk:        0.15,
		HorizonDays:    cycleDays * 2,
		SimulatorParams: map[string]any{
			"strategy":  "wheel",
			"putDelta":  putDelta,
			"callDelta": 0.30,
			"cycleDays": cycleDays,
		},
	}
}

func buildCreditSpread(in Inputs) types.Opportunity {
	mult := 0.65 + 0.35*math.Min(1, in.IV.IVRank/100)

	return types.Opportunity{
		StrategyID: "credit_spread",
		Rationale: []string{
			"Directional weakness favors call credit spreads above resistance",
			fmt.Sprintf("IV rank %.0f widens the credit received per unit of risk", in.IV.IVRank),
			"Defined-risk structure caps loss if the move reverses",
		},
		Confidence:     scaled(in, mult),
		ExpectedReturn: 0.20,
		MaxRisk:        0.08,
		HorizonDays:    35,
		SimulatorParams: map[string]any{
			"strategy":   "credit_spread",
			"shortDelta": 0.25,
			"width":      5.0,
			"dte":        35,
		},
	}
}

func buildCoveredIncome(in Inputs) types.Opportunity {
	// Event risk calls for a tighter call and a shorter expiry.
	callDelta := 0.30
	expiry := 45
	if in.Classification.Regime == types.RegimeEventRisk {
		callDelta = 0.20
		expiry = 21
	}

	mult := 0.75 + 0.15*math.Min(1, in.IV.IVRank/100)

	return types.Opportunity{
		StrategyID: "covered_income",
		Rationale: []string{
			"Existing long exposure can be monetized with call premium",
			fmt.Sprintf("Calls at %.0f delta leave upside while collecting income", callDelta*100),
		},
		Confidence:     scaled(in, mult),
		ExpectedReturn: 0.12,
		MaxRisk:        0.12,
		HorizonDays:    expiry,
		SimulatorParams: map[string]any{
			"strategy":  "covered_income",
			"callDelta": callDelta,
			"dte":       expiry,
		},
	}
}

// scaled derives an opportunity's confidence from the classifier
// confidence and the rule-specific IV-fit multiplier.
func scaled(in Inputs, mult float64) float64 {
	c := in.Classification.Confidence * mult
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return round4(c)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
