// Package volatility estimates implied-volatility metrics for a symbol,
// preferring a live options chain and degrading through realized-vol
// estimation down to fixed market-typical defaults. Estimation is
// best-effort and never blocks the regime pipeline.
package volatility

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/internal/marketdata"
	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

const (
	tradingDays   = 252
	rollingWindow = 20 // trading days per realized-vol sample
	minBars       = 50 // below this, fall back to fixed defaults
)

// lowTermSymbols are instruments with known structurally flat term
// structure; their estimated term slope is damped.
var lowTermSymbols = map[string]bool{
	"TLT": true,
	"GLD": true,
	"SLV": true,
}

// highSkewSymbols are index-style instruments with known pronounced put
// skew; their estimated skew is amplified.
var highSkewSymbols = map[string]bool{
	"SPY": true,
	"QQQ": true,
	"IWM": true,
	"DIA": true,
}

// Estimator derives IV rank, term-structure slope and put/call skew for
// a symbol.
type Estimator struct {
	logger *zap.Logger
	chains marketdata.ChainProvider
	bars   marketdata.BarProvider
}

// NewEstimator creates a new volatility metrics estimator.
func NewEstimator(logger *zap.Logger, chains marketdata.ChainProvider, bars marketdata.BarProvider) *Estimator {
	return &Estimator{logger: logger, chains: chains, bars: bars}
}

// Estimate returns IV metrics for the symbol as of the given date.
// The chain-derived path carries confidence 0.9; the realized-vol
// fallback is tagged approximated with confidence 0.3-0.6; total data
// absence yields fixed market-typical defaults. Never returns an error.
func (e *Estimator) Estimate(ctx context.Context, symbol string, asOf time.Time) types.IvMetrics {
	symbol = utils.FormatSymbol(symbol)

	if metrics, ok := e.fromChain(ctx, symbol, asOf); ok {
		return metrics
	}

	return e.fromHistory(ctx, symbol, asOf)
}

// fromChain derives metrics from a live options chain snapshot.
func (e *Estimator) fromChain(ctx context.Context, symbol string, asOf time.Time) (types.IvMetrics, bool) {
	snapshot, err := e.chains.GetImpliedVolatilitySnapshot(ctx, symbol, asOf)
	if err != nil || snapshot == nil {
		if err != nil && err != marketdata.ErrNoChain {
			e.logger.Warn("Chain fetch failed, falling back to realized vol",
				zap.String("symbol", symbol), zap.Error(err))
		}
		return types.IvMetrics{}, false
	}

	ivRange := snapshot.YearHighIV - snapshot.YearLowIV
	if snapshot.CurrentIV <= 0 || ivRange <= 0 {
		return types.IvMetrics{}, false
	}

	rank := 100 * (snapshot.CurrentIV - snapshot.YearLowIV) / ivRange

	term := 0.0
	if snapshot.NearTermIV > 0 {
		term = (snapshot.FarTermIV - snapshot.NearTermIV) / snapshot.NearTermIV
	}

	skew := (snapshot.Call25DeltaIV - snapshot.Put25DeltaIV) / snapshot.CurrentIV

	return types.IvMetrics{
		IVRank:       utils.Clamp(rank, 0, 100),
		Term:         utils.Clamp(term, -0.5, 0.5),
		Skew:         utils.Clamp(skew, -0.3, 0.1),
		Approximated: false,
		Confidence:   0.9,
	}, true
}

// fromHistory estimates metrics from ~1 year of daily bars via rolling
// realized volatility.
func (e *Estimator) fromHistory(ctx context.Context, symbol string, asOf time.Time) types.IvMetrics {
	bars, err := e.bars.GetHistoricalBars(ctx, symbol, asOf.AddDate(-1, 0, 0), asOf)
	if err != nil || len(bars) < minBars {
		if err != nil {
			e.logger.Warn("Bar fetch failed, using defaults",
				zap.String("symbol", symbol), zap.Error(err))
		}
		return defaultMetrics()
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i], _ = bar.Close.Float64()
	}

	vols := rollingRealizedVol(closes, rollingWindow)
	if len(vols) < 2 {
		return defaultMetrics()
	}

	latest := vols[len(vols)-1]
	rank := utils.PercentileRank(vols[:len(vols)-1], latest)

	term := termSlope(vols)
	if lowTermSymbols[symbol] {
		term *= 0.5
	}

	skew := skewProxy(vols)
	if highSkewSymbols[symbol] {
		skew *= 1.5
	}

	// More realized-vol history means a tighter percentile estimate.
	confidence := 0.3 + 0.3*math.Min(1, float64(len(vols))/float64(tradingDays-rollingWindow))

	return types.IvMetrics{
		IVRank:       utils.Clamp(rank, 0, 100),
		Term:         utils.Clamp(term, -0.5, 0.5),
		Skew:         utils.Clamp(skew, -0.3, 0.1),
		Approximated: true,
		Confidence:   utils.Clamp(confidence, 0.3, 0.6),
	}
}

// defaultMetrics are the fixed market-typical values used when there is
// not enough history to estimate anything.
func defaultMetrics() types.IvMetrics {
	return types.IvMetrics{
		IVRank:       45,
		Term:         0.15,
		Skew:         -0.1,
		Approximated: true,
		Confidence:   0.3,
	}
}

// rollingRealizedVol computes annualized realized volatility over a
// fixed rolling window of daily close-to-close returns.
func rollingRealizedVol(closes []float64, window int) []float64 {
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}

	if len(returns) < window {
		return nil
	}

	vols := make([]float64, 0, len(returns)-window+1)
	for i := window; i <= len(returns); i++ {
		vol := utils.StdDev(returns[i-window:i]) * math.Sqrt(tradingDays)
		vols = append(vols, vol)
	}

	return vols
}

// termSlope approximates the term-structure slope as the normalized
// difference between a recent short vol window and an earlier one.
func termSlope(vols []float64) float64 {
	if len(vols) < 40 {
		return 0
	}

	recent := utils.Mean(vols[len(vols)-10:])
	earlier := utils.Mean(vols[len(vols)-40 : len(vols)-10])
	if earlier <= 0 {
		return 0
	}

	return (recent - earlier) / earlier
}

// skewProxy approximates put/call skew as a negative function of the
// dispersion of volatility changes ("vol of vol").
func skewProxy(vols []float64) float64 {
	if len(vols) < 2 {
		return -0.05
	}

	changes := make([]float64, 0, len(vols)-1)
	for i := 1; i < len(vols); i++ {
		changes = append(changes, vols[i]-vols[i-1])
	}

	volOfVol := utils.StdDev(changes)
	return -math.Min(volOfVol*3, 0.3)
}
