// Package benchmark provides regression-based benchmark comparison and
// synthetic benchmark series generation.
package benchmark

import (
	"math"

	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/internal/analytics"
	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

const tradingDays = 252

// RegressionEngine computes alpha, beta, correlation, tracking error and
// information ratio over date-aligned strategy and benchmark series.
type RegressionEngine struct {
	logger *zap.Logger
	risk   *analytics.Engine
}

// NewRegressionEngine creates a new benchmark regression engine.
func NewRegressionEngine(logger *zap.Logger) *RegressionEngine {
	return &RegressionEngine{
		logger: logger,
		risk:   analytics.NewEngine(logger),
	}
}

// neutralMetrics are the defaults when fewer than 2 aligned points exist.
func neutralMetrics() types.BenchmarkMetrics {
	return types.BenchmarkMetrics{Beta: 1}
}

// Compare aligns the two series by exact calendar-day key, derives paired
// return series, and computes the regression metrics. Unmatched dates are
// dropped from both sides; there is no interpolation. Fewer than 2
// aligned points resolve to the neutral defaults rather than an error.
func (e *RegressionEngine) Compare(strategy, bench []types.EquityPoint) types.BenchmarkMetrics {
	alignedStrategy, alignedBench := alignByDate(strategy, bench)
	if len(alignedStrategy) < 2 {
		m := neutralMetrics()
		m.AlignedPoints = len(alignedStrategy)
		return m
	}

	strategyReturns := analytics.DailyReturns(alignedStrategy)
	benchReturns := analytics.DailyReturns(alignedBench)

	n := len(strategyReturns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	strategyReturns = strategyReturns[:n]
	benchReturns = benchReturns[:n]

	if n < 1 {
		m := neutralMetrics()
		m.AlignedPoints = len(alignedStrategy)
		return m
	}

	meanS := utils.Mean(strategyReturns)
	meanB := utils.Mean(benchReturns)
	cov := covariance(strategyReturns, benchReturns, meanS, meanB)
	varB := cov2(benchReturns, meanB)

	beta := 1.0
	if varB > 0 {
		beta = cov / varB
	}

	alpha := (meanS - beta*meanB) * tradingDays

	correlation := 0.0
	stdS := utils.StdDev(strategyReturns)
	stdB := utils.StdDev(benchReturns)
	if stdS > 0 && stdB > 0 {
		correlation = cov / (stdS * stdB)
	}

	excess := make([]float64, n)
	for i := range excess {
		excess[i] = strategyReturns[i] - benchReturns[i]
	}
	trackingError := utils.StdDev(excess) * math.Sqrt(tradingDays)

	informationRatio := 0.0
	if trackingError > 0 {
		informationRatio = utils.Mean(excess) * tradingDays / trackingError
	}

	return types.BenchmarkMetrics{
		Alpha:            utils.Finite(alpha, 0),
		Beta:             utils.Finite(beta, 1),
		Correlation:      utils.Finite(correlation, 0),
		TrackingError:    utils.Finite(trackingError, 0),
		InformationRatio: utils.Finite(informationRatio, 0),
		SharpeStrategy:   e.risk.Sharpe(strategyReturns),
		SharpeBenchmark:  e.risk.Sharpe(benchReturns),
		AlignedPoints:    len(alignedStrategy),
	}
}

// alignByDate keeps only the points whose calendar-day keys appear in
// both series, preserving the strategy series' order.
func alignByDate(strategy, bench []types.EquityPoint) ([]types.EquityPoint, []types.EquityPoint) {
	benchByDate := make(map[string]types.EquityPoint, len(bench))
	for _, p := range bench {
		benchByDate[p.DateKey()] = p
	}

	var alignedStrategy, alignedBench []types.EquityPoint
	for _, p := range strategy {
		if bp, ok := benchByDate[p.DateKey()]; ok {
			alignedStrategy = append(alignedStrategy, p)
			alignedBench = append(alignedBench, bp)
		}
	}

	return alignedStrategy, alignedBench
}

// covariance returns the sample covariance of two equal-length series.
func covariance(a, b []float64, meanA, meanB float64) float64 {
	if len(a) < 2 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}
	return sum / float64(len(a)-1)
}

// cov2 returns the sample variance of a series.
func cov2(a []float64, mean float64) float64 {
	return covariance(a, a, mean, mean)
}
