// Package regime classifies market conditions into a closed set of
// regime labels driving strategy recommendation.
package regime

import (
	"math"

	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

const tradingDays = 252

// Config holds the classification thresholds.
type Config struct {
	ShortSMAWindow   int     // fast moving average window
	LongSMAWindow    int     // slow moving average window
	TrendWindow      int     // lookback for total-return trend
	TrendThreshold   float64 // SMA spread beyond which a trend is called
	ReturnThreshold  float64 // window return beyond which a trend is called
	EventVolIndex    float64 // vol-index level that alone signals event risk
	ElevatedVolIndex float64 // vol-index level splitting sideways high/low vol
	EventIVRank      float64 // IV rank that, with an elevated index, signals event risk
	HighRealizedVol  float64 // annualized realized vol splitting sideways high/low
	MinBars          int     // below this, classify from vol inputs alone
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() *Config {
	return &Config{
		ShortSMAWindow:   20,
		LongSMAWindow:    50,
		TrendWindow:      60,
		TrendThreshold:   0.02,
		ReturnThreshold:  0.08,
		EventVolIndex:    28,
		ElevatedVolIndex: 20,
		EventIVRank:      80,
		HighRealizedVol:  0.22,
		MinBars:          50,
	}
}

// Classifier maps (price history, IV metrics, vol-index level) to exactly
// one regime label with a confidence score. Classification is a pure,
// deterministic function of its inputs.
type Classifier struct {
	logger *zap.Logger
	config *Config
}

// NewClassifier creates a new regime classifier.
func NewClassifier(logger *zap.Logger, config *Config) *Classifier {
	if config == nil {
		config = DefaultConfig()
	}
	return &Classifier{logger: logger, config: config}
}

// Classify returns the single regime label for the given inputs.
// Confidence is always within [0, 1].
func (c *Classifier) Classify(bars []types.PricePoint, iv types.IvMetrics, volIndex float64) types.RegimeClassification {
	cfg := c.config

	// Event risk dominates every other signal.
	if volIndex >= cfg.EventVolIndex ||
		(iv.IVRank >= cfg.EventIVRank && volIndex >= cfg.ElevatedVolIndex) {
		margin := (volIndex - cfg.ElevatedVolIndex) / cfg.ElevatedVolIndex
		return types.RegimeClassification{
			Regime:     types.RegimeEventRisk,
			Confidence: utils.Clamp01(0.6 + 0.4*margin),
		}
	}

	if len(bars) < cfg.MinBars {
		// Not enough price history for a trend call; vol inputs alone
		// only support a low-confidence sideways label.
		regime := types.RegimeSidewaysLowVol
		if volIndex >= cfg.ElevatedVolIndex {
			regime = types.RegimeSidewaysHighVol
		}
		return types.RegimeClassification{Regime: regime, Confidence: 0.3}
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i], _ = bar.Close.Float64()
	}

	smaSpread := c.smaSpread(closes)
	windowReturn := c.windowReturn(closes)
	realizedVol := utils.StdDev(utils.TailReturns(closes, cfg.TrendWindow)) * math.Sqrt(tradingDays)

	trendUp := smaSpread > cfg.TrendThreshold || windowReturn > cfg.ReturnThreshold
	trendDown := smaSpread < -cfg.TrendThreshold || windowReturn < -cfg.ReturnThreshold

	switch {
	case trendUp && !trendDown:
		strength := math.Max(smaSpread/cfg.TrendThreshold, windowReturn/cfg.ReturnThreshold)
		return types.RegimeClassification{
			Regime:     types.RegimeBullTrend,
			Confidence: utils.Clamp01(0.5 + 0.15*strength),
		}
	case trendDown && !trendUp:
		strength := math.Max(-smaSpread/cfg.TrendThreshold, -windowReturn/cfg.ReturnThreshold)
		return types.RegimeClassification{
			Regime:     types.RegimeBearTrend,
			Confidence: utils.Clamp01(0.5 + 0.15*strength),
		}
	}

	if volIndex >= cfg.ElevatedVolIndex || realizedVol >= cfg.HighRealizedVol {
		excess := math.Max(volIndex/cfg.ElevatedVolIndex, realizedVol/cfg.HighRealizedVol) - 1
		return types.RegimeClassification{
			Regime:     types.RegimeSidewaysHighVol,
			Confidence: utils.Clamp01(0.55 + 0.3*excess),
		}
	}

	calm := 1 - math.Max(volIndex/cfg.ElevatedVolIndex, realizedVol/cfg.HighRealizedVol)
	return types.RegimeClassification{
		Regime:     types.RegimeSidewaysLowVol,
		Confidence: utils.Clamp01(0.55 + 0.3*calm),
	}
}

// smaSpread returns (fastSMA - slowSMA) / slowSMA over the latest bars.
func (c *Classifier) smaSpread(closes []float64) float64 {
	short := tailMean(closes, c.config.ShortSMAWindow)
	long := tailMean(closes, c.config.LongSMAWindow)
	if long <= 0 {
		return 0
	}
	return (short - long) / long
}

// windowReturn returns the total return over the trend window.
func (c *Classifier) windowReturn(closes []float64) float64 {
	window := c.config.TrendWindow
	if len(closes) < window {
		window = len(closes)
	}
	first := closes[len(closes)-window]
	if first <= 0 {
		return 0
	}
	return (closes[len(closes)-1] - first) / first
}

func tailMean(values []float64, n int) float64 {
	if len(values) < n {
		n = len(values)
	}
	return utils.Mean(values[len(values)-n:])
}
