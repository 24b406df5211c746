// Package advisor orchestrates the regime pipeline: price history and
// volatility metrics feed the regime classifier, whose output drives
// rule-based opportunity generation.
package advisor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/internal/marketdata"
	"github.com/vega-desktop/analytics-backend/internal/monitoring"
	"github.com/vega-desktop/analytics-backend/internal/opportunity"
	"github.com/vega-desktop/analytics-backend/internal/regime"
	"github.com/vega-desktop/analytics-backend/internal/volatility"
	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

// Report is the full output of one advisory pass over a symbol.
type Report struct {
	Symbol               string                     `json:"symbol"`
	AsOf                 time.Time                  `json:"asOf"`
	IV                   types.IvMetrics            `json:"iv"`
	VolIndex             float64                    `json:"volIndex"`
	VolIndexApproximated bool                       `json:"volIndexApproximated"`
	Classification       types.RegimeClassification `json:"classification"`
	Opportunities        []types.Opportunity        `json:"opportunities"`
}

// Advisor runs the classification pipeline end to end.
type Advisor struct {
	logger     *zap.Logger
	bars       marketdata.BarProvider
	volIndex   marketdata.VolIndexProvider
	estimator  *volatility.Estimator
	classifier *regime.Classifier
	generator  *opportunity.Generator
}

// New creates an advisor over the given data collaborators.
func New(logger *zap.Logger, bars marketdata.BarProvider, chains marketdata.ChainProvider, volIndex marketdata.VolIndexProvider) *Advisor {
	return &Advisor{
		logger:     logger,
		bars:       bars,
		volIndex:   volIndex,
		estimator:  volatility.NewEstimator(logger, chains, bars),
		classifier: regime.NewClassifier(logger, nil),
		generator:  opportunity.NewGenerator(logger),
	}
}

// Analyze classifies the symbol's market regime and generates candidate
// strategy opportunities. Volatility estimation and the vol-index fetch
// degrade through fallbacks; only total inability to fetch price history
// is surfaced as an error.
func (a *Advisor) Analyze(ctx context.Context, symbol string, asOf time.Time) (*Report, error) {
	symbol = utils.FormatSymbol(symbol)

	bars, err := a.bars.GetHistoricalBars(ctx, symbol, asOf.AddDate(-1, 0, 0), asOf)
	if err != nil {
		return nil, fmt.Errorf("getHistoricalBars %s: %w", symbol, err)
	}

	iv := a.estimator.Estimate(ctx, symbol, asOf)

	volIdx, approximated := a.volIndexLevel(ctx, asOf, iv)

	classification := a.classifier.Classify(bars, iv, volIdx)
	opportunities := a.generator.Generate(opportunity.Inputs{
		Symbol:         symbol,
		Classification: classification,
		IV:             iv,
	})

	monitoring.RecordOpportunities(string(classification.Regime), len(opportunities))

	a.logger.Info("Advisory pass complete",
		zap.String("symbol", symbol),
		zap.String("regime", string(classification.Regime)),
		zap.Float64("confidence", classification.Confidence),
		zap.Float64("iv_rank", iv.IVRank),
		zap.Int("opportunities", len(opportunities)),
	)

	return &Report{
		Symbol:               symbol,
		AsOf:                 asOf,
		IV:                   iv,
		VolIndex:             volIdx,
		VolIndexApproximated: approximated,
		Classification:       classification,
		Opportunities:        opportunities,
	}, nil
}

// volIndexLevel fetches the broad market volatility index, substituting
// a heuristic derived from the symbol's own IV rank when the fetch
// fails.
func (a *Advisor) volIndexLevel(ctx context.Context, asOf time.Time, iv types.IvMetrics) (float64, bool) {
	level, err := a.volIndex.GetVolatilityIndexLevel(ctx, asOf)
	if err == nil && level > 0 {
		return level, false
	}

	if err != nil {
		a.logger.Warn("Vol index unavailable, deriving proxy from IV rank", zap.Error(err))
	}

	// Rough mapping: IV rank 0 -> calm (~12), IV rank 100 -> stressed (~32).
	return 12 + 20*iv.IVRank/100, true
}
