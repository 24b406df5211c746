// Package marketdata provides the external data collaborator interfaces
// consumed by the analytics core, plus file-backed implementations for
// the desktop deployment.
package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/vega-desktop/analytics-backend/pkg/types"
)

// ErrNoChain indicates no options chain snapshot is available. Callers
// fall back to realized-volatility estimation, never hard-fail on it.
var ErrNoChain = errors.New("options chain unavailable")

// ErrNoData indicates price history could not be fetched at all.
var ErrNoData = errors.New("no price history available")

// BarProvider supplies historical daily bars. An empty slice is a valid
// (if unhelpful) result, not an error.
type BarProvider interface {
	GetHistoricalBars(ctx context.Context, symbol string, start, end time.Time) ([]types.PricePoint, error)
}

// ChainProvider supplies raw options-chain IV snapshots. Absence must
// surface as ErrNoChain.
type ChainProvider interface {
	GetImpliedVolatilitySnapshot(ctx context.Context, symbol string, asOf time.Time) (*types.OptionChainSnapshot, error)
}

// VolIndexProvider supplies a VIX-like broad market volatility reading.
type VolIndexProvider interface {
	GetVolatilityIndexLevel(ctx context.Context, asOf time.Time) (float64, error)
}

// Simulator is the black-box strategy simulation executor. Each call is
// I/O-bound and cancelable; failures are isolated per invocation.
type Simulator interface {
	RunSimulation(ctx context.Context, req types.SimulationRequest) (*types.SimulationSummary, error)
}
