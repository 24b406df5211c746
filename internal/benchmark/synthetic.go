package benchmark

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/internal/analytics"
	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

// Market-like random-walk parameters: ~10% annual drift, ~16% annual
// volatility, converted to daily terms.
const (
	annualDrift      = 0.10
	annualVolatility = 0.16
)

// SyntheticGenerator produces a deterministic, seeded pseudo-market
// series for use when no real benchmark series is available. The same
// (dates, seed) always produces byte-identical output. The series is not
// real market data; tagging it as synthetic is the caller's job.
type SyntheticGenerator struct {
	logger *zap.Logger
}

// NewSyntheticGenerator creates a new synthetic benchmark generator.
func NewSyntheticGenerator(logger *zap.Logger) *SyntheticGenerator {
	return &SyntheticGenerator{logger: logger}
}

// Generate produces a daily equity series between the config dates,
// skipping weekends, using a seeded LCG feeding a Box-Muller transform
// to approximate normal daily returns.
func (g *SyntheticGenerator) Generate(cfg types.SyntheticConfig) []types.EquityPoint {
	if cfg.EndDate.Before(cfg.StartDate) {
		return nil
	}

	initial := cfg.InitialValue
	if initial.LessThanOrEqual(decimal.Zero) {
		initial = decimal.NewFromInt(10000)
	}

	rng := utils.NewLCG(cfg.Seed)
	dailyDrift := annualDrift / tradingDays
	dailyVol := annualVolatility / math.Sqrt(tradingDays)

	var dates []time.Time
	var equities []decimal.Decimal

	value, _ := initial.Float64()
	day := cfg.StartDate
	for !day.After(cfg.EndDate) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
			continue
		}

		dates = append(dates, day)
		equities = append(equities, decimal.NewFromFloat(utils.RoundPlaces(value, 2)))

		ret := dailyDrift + rng.NormFloat64()*dailyVol
		value *= 1 + ret
		if value < 1 {
			value = 1
		}

		day = day.AddDate(0, 0, 1)
	}

	return analytics.BuildEquityCurve(dates, equities)
}
