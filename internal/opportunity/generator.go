// Package opportunity maps market regime and volatility conditions to
// candidate strategy configurations via a declarative rule table.
package opportunity

import (
	"sort"

	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/pkg/types"
)

// maxOpportunities caps the emitted list. The cap and the descending
// confidence*expectedReturn ordering are contractual.
const maxOpportunities = 6

// Generator evaluates the strategy rule table against classified market
// conditions.
type Generator struct {
	logger *zap.Logger
	rules  []Rule
}

// NewGenerator creates a generator with the default rule table.
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger, rules: defaultRules()}
}

// Generate evaluates every rule in order and returns the emitted
// opportunities sorted descending by confidence * expectedReturn,
// capped at the documented maximum.
func (g *Generator) Generate(in Inputs) []types.Opportunity {
	var opportunities []types.Opportunity

	for _, rule := range g.rules {
		if !rule.Applies(in) {
			continue
		}
		opportunities = append(opportunities, rule.Build(in))
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Confidence*opportunities[i].ExpectedReturn >
			opportunities[j].Confidence*opportunities[j].ExpectedReturn
	})

	if len(opportunities) > maxOpportunities {
		opportunities = opportunities[:maxOpportunities]
	}

	if g.logger != nil {
		g.logger.Debug("Opportunities generated",
			zap.String("regime", string(in.Classification.Regime)),
			zap.Int("count", len(opportunities)),
		)
	}

	return opportunities
}

// Rules exposes the rule table for per-rule testing.
func (g *Generator) Rules() []Rule {
	return g.rules
}
