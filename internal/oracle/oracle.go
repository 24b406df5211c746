// Package oracle reproduces the strategy simulator's equity-curve
// algorithm in-process from a seed, so that seed-based reproducibility
// is verifiable down to the serialized byte. It implements the same
// Simulator interface the optimizer consumes and therefore doubles as
// the embedded simulator adapter for the desktop deployment.
package oracle

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/internal/analytics"
	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

const (
	tradingDays = 252
	baseDrift   = 0.0004 // per-day drift before modulation
	dailyVol    = 0.012  // per-day shock amplitude
)

// Oracle is a deterministic strategy simulator: identical (parameters,
// seed) produce identical equity curves, identical derived metrics, and
// byte-identical serialized output.
type Oracle struct {
	logger *zap.Logger
}

// New creates a new deterministic oracle.
func New(logger *zap.Logger) *Oracle {
	return &Oracle{logger: logger}
}

// RunSimulation implements marketdata.Simulator.
func (o *Oracle) RunSimulation(ctx context.Context, req types.SimulationRequest) (*types.SimulationSummary, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("runSimulation: end date %s before start date %s",
			req.EndDate.Format("2006-01-02"), req.StartDate.Format("2006-01-02"))
	}

	capital, _ := req.InitialCapital.Float64()
	if capital <= 0 {
		return nil, fmt.Errorf("runSimulation: initial capital must be positive")
	}

	// Strategy identity and overrides perturb the sequence; capital does
	// not, so equity scales linearly with it.
	effectiveSeed := req.Seed + int64(paramHash(req.Ticker, req.Strategy, req.Overrides))
	rng := utils.NewLCG(effectiveSeed)
	phase := float64(effectiveSeed % 100)

	var dates []time.Time
	var equities []decimal.Decimal

	value := capital
	upDays, downDays := 0, 0
	idx := 0

	for day := req.StartDate; !day.After(req.EndDate); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("runSimulation: %w", err)
		}
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		dates = append(dates, day)
		equities = append(equities, decimal.NewFromFloat(utils.RoundPlaces(value, 2)))

		drift := baseDrift * (1 + 0.5*math.Sin(float64(idx)/10+phase))
		shock := (rng.Float64() - 0.5) * 2 * dailyVol
		ret := drift + shock

		value *= 1 + ret
		if value < 0.01*capital {
			value = 0.01 * capital
		}

		if ret > 0 {
			upDays++
		} else if ret < 0 {
			downDays++
		}
		idx++
	}

	curve := analytics.BuildEquityCurve(dates, equities)
	if len(curve) == 0 {
		return &types.SimulationSummary{}, nil
	}

	winRate := 0.0
	if upDays+downDays > 0 {
		winRate = float64(upDays) / float64(upDays+downDays)
	}

	first, _ := curve[0].Equity.Float64()
	last, _ := curve[len(curve)-1].Equity.Float64()
	cagr := 0.0
	if first > 0 && len(curve) > 1 {
		years := float64(len(curve)) / tradingDays
		cagr = math.Pow(last/first, 1/years) - 1
	}

	return &types.SimulationSummary{
		EquityCurve: curve,
		WinRate:     utils.Finite(winRate, 0),
		CAGR:        utils.Finite(cagr, 0),
		MaxDrawdown: analytics.MaxDrawdown(curve),
		TradeCount:  maxInt(1, len(curve)/5),
	}, nil
}

// Serialize renders an equity curve as CSV with fixed-precision fields,
// byte-identical for identical input.
func Serialize(curve []types.EquityPoint) []byte {
	var buf bytes.Buffer
	buf.WriteString("date,equity,drawdown\n")
	for _, p := range curve {
		buf.WriteString(p.Date.Format("2006-01-02"))
		buf.WriteByte(',')
		buf.WriteString(p.Equity.StringFixed(2))
		buf.WriteByte(',')
		buf.WriteString(p.Drawdown.StringFixed(4))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// paramHash folds the non-capital simulation parameters into a stable
// 32-bit value.
func paramHash(ticker, strategy string, overrides map[string]any) uint32 {
	h := fnv.New32a()
	h.Write([]byte(ticker))
	h.Write([]byte{0})
	h.Write([]byte(strategy))

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(fmt.Sprintf("%v", overrides[k])))
	}

	return h.Sum32()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
