// Package optimization provides grid-search parameter optimization over
// repeated calls to the external strategy simulator, with content-
// addressed caching, bounded concurrency and incremental progress
// reporting.
package optimization

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/internal/marketdata"
	"github.com/vega-desktop/analytics-backend/internal/monitoring"
	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

// ProgressFunc receives a progress snapshot after each completed
// iteration. Result ranks are only meaningful in the final list, not in
// partial snapshots.
type ProgressFunc func(types.OptimizerProgress)

// Optimizer performs cartesian grid search over a strategy's tunable
// parameters. Iteration failures are isolated: a failed simulator call
// skips that one combination and the batch result reflects whatever
// subset succeeded.
type Optimizer struct {
	logger *zap.Logger
	sim    marketdata.Simulator
	cache  *Cache
	config *types.OptimizerConfig
}

// DefaultConfig returns the optimizer defaults.
func DefaultConfig() *types.OptimizerConfig {
	return &types.OptimizerConfig{
		MaxIterations: 200,
		Workers:       4,
		Weights:       types.DefaultScoreWeights(),
	}
}

// NewOptimizer creates a new grid-search optimizer. The cache is an
// explicit dependency so callers control its lifetime.
func NewOptimizer(logger *zap.Logger, sim marketdata.Simulator, cache *Cache, config *types.OptimizerConfig) *Optimizer {
	if config == nil {
		config = DefaultConfig()
	}
	if cache == nil {
		cache = NewCache(logger)
	}
	return &Optimizer{logger: logger, sim: sim, cache: cache, config: config}
}

// Optimize enumerates the cartesian product of the request's tunables,
// truncates it to the iteration cap, runs a baseline simulation, scores
// every combination against it, and returns the results sorted by score
// with 1-based ranks assigned.
func (o *Optimizer) Optimize(ctx context.Context, jobID string, req types.OptimizationRequest, progress ProgressFunc) ([]types.OptimizerResult, error) {
	weights := o.config.Weights
	if req.Weights != nil {
		weights = *req.Weights
	}

	maxIter := o.config.MaxIterations
	if req.MaxIter > 0 {
		maxIter = req.MaxIter
	}

	combos := expandGrid(req.Tunables)
	combos = dedupeCombos(req.Base, combos)
	if maxIter > 0 && len(combos) > maxIter {
		combos = combos[:maxIter]
	}

	baseline, err := o.runOne(ctx, req.Base)
	if err != nil {
		return nil, fmt.Errorf("optimize baseline: %w", err)
	}

	o.logger.Info("Starting grid search",
		zap.String("job", jobID),
		zap.String("ticker", req.Base.Ticker),
		zap.Int("combinations", len(combos)),
		zap.Int("workers", o.workers()),
	)

	var (
		mu        sync.Mutex
		completed []types.OptimizerResult
		bestScore float64
		done      int
	)
	startTime := time.Now()

	sem := make(chan struct{}, o.workers())
	var wg sync.WaitGroup

	for _, combo := range combos {
		wg.Add(1)
		go func(combo map[string]any) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Spawning is instant; cancellation has to be honored here,
			// where the work actually runs.
			if ctx.Err() != nil {
				return
			}

			iterStart := time.Now()
			summary, err := o.runOne(ctx, applyCombo(req.Base, combo))
			monitoring.ObserveIteration(time.Since(iterStart))

			mu.Lock()
			defer mu.Unlock()
			done++

			if err != nil {
				o.logger.Warn("Iteration failed, skipping",
					zap.String("job", jobID), zap.Error(err))
			} else {
				result := scoreResult(combo, summary, baseline, weights)
				completed = append(completed, result)
				if result.Score > bestScore {
					bestScore = result.Score
				}
			}

			if progress != nil {
				elapsed := time.Since(startTime)
				remaining := len(combos) - done
				eta := time.Duration(0)
				if done > 0 {
					eta = elapsed / time.Duration(done) * time.Duration(remaining)
				}

				snapshot := make([]types.OptimizerResult, len(completed))
				copy(snapshot, completed)

				progress(types.OptimizerProgress{
					JobID:         jobID,
					Current:       done,
					Total:         len(combos),
					CurrentParams: combo,
					BestScore:     bestScore,
					Completed:     snapshot,
					Elapsed:       elapsed,
					ETA:           eta,
				})
			}
		}(combo)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Score > completed[j].Score
	})
	for i := range completed {
		completed[i].Rank = i + 1
	}

	o.logger.Info("Grid search complete",
		zap.String("job", jobID),
		zap.Int("succeeded", len(completed)),
		zap.Int("total", len(combos)),
		zap.Float64("best_score", bestScore),
		zap.Duration("duration", time.Since(startTime)),
	)

	return completed, nil
}

// runOne resolves one simulation through the cache. Identical keys never
// reach the simulator twice within a session.
func (o *Optimizer) runOne(ctx context.Context, req types.SimulationRequest) (*types.SimulationSummary, error) {
	key := CacheKey(req)
	if cached, ok := o.cache.Get(key); ok {
		return cached, nil
	}

	summary, err := o.sim.RunSimulation(ctx, req)
	monitoring.RecordSimulation(err == nil)
	if err != nil {
		return nil, err
	}

	o.cache.Put(key, summary)
	return summary, nil
}

func (o *Optimizer) workers() int {
	if o.config.Workers > 0 {
		return o.config.Workers
	}
	return 1
}

// scoreResult computes the weighted score and per-metric improvement of
// one combination against the baseline.
func scoreResult(combo map[string]any, summary, baseline *types.SimulationSummary, w types.ScoreWeights) types.OptimizerResult {
	score := utils.Clamp01(
		w.WinRate*utils.Clamp01(summary.WinRate) +
			w.CAGR*utils.Clamp01(summary.CAGR/0.5) +
			w.Drawdown*utils.Clamp01(1-math.Abs(summary.MaxDrawdown)/0.5),
	)

	return types.OptimizerResult{
		Params:      combo,
		WinRate:     summary.WinRate,
		CAGR:        summary.CAGR,
		MaxDrawdown: summary.MaxDrawdown,
		TradeCount:  summary.TradeCount,
		Score:       score,
		Improvement: map[string]float64{
			"winRate":     summary.WinRate - baseline.WinRate,
			"cagr":        summary.CAGR - baseline.CAGR,
			"maxDrawdown": math.Abs(baseline.MaxDrawdown) - math.Abs(summary.MaxDrawdown),
		},
	}
}

// expandGrid enumerates the full cartesian product of the tunable value
// sets. Numeric ranges are expanded by step and snapped to the grid to
// avoid floating-point drift.
func expandGrid(tunables []types.TunableParam) []map[string]any {
	combos := []map[string]any{{}}

	for _, p := range tunables {
		values := expandValues(p)
		if len(values) == 0 {
			continue
		}

		next := make([]map[string]any, 0, len(combos)*len(values))
		for _, combo := range combos {
			for _, v := range values {
				merged := make(map[string]any, len(combo)+1)
				for k, cv := range combo {
					merged[k] = cv
				}
				merged[p.Name] = v
				next = append(next, merged)
			}
		}
		combos = next
	}

	return combos
}

func expandValues(p types.TunableParam) []any {
	switch p.Kind {
	case types.TunableNumeric:
		if p.Step <= 0 || p.Max < p.Min {
			return []any{p.Min}
		}
		var values []any
		for v := p.Min; v <= p.Max+p.Step/2; v += p.Step {
			values = append(values, utils.RoundStep(v, p.Min, p.Step))
		}
		return values
	case types.TunableEnum:
		values := make([]any, 0, len(p.Options))
		for _, opt := range p.Options {
			values = append(values, opt)
		}
		return values
	case types.TunableBool:
		return []any{false, true}
	}
	return nil
}

// dedupeCombos drops combinations whose effective cache key collides
// with an earlier one, preserving order.
func dedupeCombos(base types.SimulationRequest, combos []map[string]any) []map[string]any {
	seen := make(map[string]bool, len(combos))
	out := combos[:0]
	for _, combo := range combos {
		key := CacheKey(applyCombo(base, combo))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, combo)
	}
	return out
}

// applyCombo overlays one grid combination onto the base request's
// overrides without mutating the base.
func applyCombo(base types.SimulationRequest, combo map[string]any) types.SimulationRequest {
	merged := make(map[string]any, len(base.Overrides)+len(combo))
	for k, v := range base.Overrides {
		merged[k] = v
	}
	for k, v := range combo {
		merged[k] = v
	}

	req := base
	req.Overrides = merged
	return req
}
