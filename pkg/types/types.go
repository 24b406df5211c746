// Package types provides shared type definitions for the analytics backend.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint represents a single daily OHLCV bar.
// Bars are ordered by timestamp and never mutated by the analytics core.
type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// EquityPoint represents a point on an equity curve.
// Drawdown is derived from the running peak and is always <= 0.
type EquityPoint struct {
	Date     time.Time       `json:"date"`
	Equity   decimal.Decimal `json:"equity"`
	Drawdown decimal.Decimal `json:"drawdown"`
}

// DateKey returns the calendar-day key used for benchmark alignment.
func (p EquityPoint) DateKey() string {
	return p.Date.Format("2006-01-02")
}

// TradeRecord represents a single closed trade with realized P&L.
type TradeRecord struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Strategy   string          `json:"strategy"`
	PnL        decimal.Decimal `json:"pnl"`
	Closed     bool            `json:"closed"`
	ExecutedAt time.Time       `json:"executedAt"`
}

// RiskMetrics represents annualized risk-adjusted performance statistics.
// All values are finite: degenerate inputs map to documented sentinels,
// never NaN or Infinity.
type RiskMetrics struct {
	Sharpe             float64 `json:"sharpe"`
	Sortino            float64 `json:"sortino"`
	ProfitFactor       float64 `json:"profitFactor"`
	Volatility         float64 `json:"volatility"`
	DownsideVolatility float64 `json:"downsideVolatility"`
	AverageReturn      float64 `json:"averageReturn"`
}

// BenchmarkMetrics represents regression outputs over date-aligned return pairs.
type BenchmarkMetrics struct {
	Alpha            float64 `json:"alpha"`
	Beta             float64 `json:"beta"`
	Correlation      float64 `json:"correlation"`
	TrackingError    float64 `json:"trackingError"`
	InformationRatio float64 `json:"informationRatio"`
	SharpeStrategy   float64 `json:"sharpeStrategy"`
	SharpeBenchmark  float64 `json:"sharpeBenchmark"`
	AlignedPoints    int     `json:"alignedPoints"`
}

// IvMetrics represents implied-volatility-derived metrics for a symbol.
// Approximated is true when the values were estimated from historical
// realized volatility instead of a live options chain.
type IvMetrics struct {
	IVRank       float64 `json:"ivRank"`     // 0..100
	Term         float64 `json:"term"`       // -0.5..0.5
	Skew         float64 `json:"skew"`       // -0.3..0.1
	Approximated bool    `json:"approximated"`
	Confidence   float64 `json:"confidence"` // 0..1
}

// Regime represents a discrete market-condition label. The set is closed.
type Regime string

const (
	RegimeBullTrend       Regime = "BULL_TREND"
	RegimeBearTrend       Regime = "BEAR_TREND"
	RegimeSidewaysLowVol  Regime = "SIDEWAYS_LOW_VOL"
	RegimeSidewaysHighVol Regime = "SIDEWAYS_HIGH_VOL"
	RegimeEventRisk       Regime = "EVENT_RISK"
)

// RegimeClassification is the output of a single classification call.
type RegimeClassification struct {
	Regime     Regime  `json:"regime"`
	Confidence float64 `json:"confidence"` // 0..1
}

// Opportunity represents a candidate strategy configuration for the
// current market regime. Immutable once generated.
type Opportunity struct {
	StrategyID      string         `json:"strategyId"`
	Rationale       []string       `json:"rationale"`
	Confidence      float64        `json:"confidence"`
	ExpectedReturn  float64        `json:"expectedReturn"` // annualized fraction
	MaxRisk         float64        `json:"maxRisk"`        // fraction of capital at risk
	HorizonDays     int            `json:"horizonDays"`
	SimulatorParams map[string]any `json:"simulatorParams"`
}

// SimulationRequest describes one invocation of the external strategy simulator.
type SimulationRequest struct {
	Ticker         string          `json:"ticker"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	Strategy       string          `json:"strategy"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
	Seed           int64           `json:"seed"`
	Overrides      map[string]any  `json:"overrides,omitempty"`
}

// SimulationSummary is the simulator's result for one request.
type SimulationSummary struct {
	EquityCurve []EquityPoint `json:"equityCurve"`
	WinRate     float64       `json:"winRate"`
	CAGR        float64       `json:"cagr"`
	MaxDrawdown float64       `json:"maxDrawdown"` // <= 0
	TradeCount  int           `json:"tradeCount"`
}

// OptimizerResult represents one scored grid-search combination.
// Rank is 1-based and only assigned after the full batch completes.
type OptimizerResult struct {
	Params      map[string]any     `json:"params"`
	WinRate     float64            `json:"winRate"`
	CAGR        float64            `json:"cagr"`
	MaxDrawdown float64            `json:"maxDrawdown"`
	TradeCount  int                `json:"tradeCount"`
	Score       float64            `json:"score"` // 0..1
	Rank        int                `json:"rank"`
	Improvement map[string]float64 `json:"improvementOverBaseline"`
}

// OptimizerProgress is reported after each completed grid-search iteration.
type OptimizerProgress struct {
	JobID         string            `json:"jobId"`
	Current       int               `json:"current"`
	Total         int               `json:"total"`
	CurrentParams map[string]any    `json:"currentParams"`
	BestScore     float64           `json:"bestScore"`
	Completed     []OptimizerResult `json:"completed"`
	Elapsed       time.Duration     `json:"elapsed"`
	ETA           time.Duration     `json:"eta"`
}

// OptionChainSnapshot is the raw IV surface summary returned by the
// options-chain collaborator. Absence of a snapshot triggers the
// realized-volatility fallback, never a hard failure.
type OptionChainSnapshot struct {
	Symbol       string    `json:"symbol"`
	AsOf         time.Time `json:"asOf"`
	CurrentIV    float64   `json:"currentIv"`
	YearHighIV   float64   `json:"yearHighIv"`
	YearLowIV    float64   `json:"yearLowIv"`
	NearTermIV   float64   `json:"nearTermIv"`
	FarTermIV    float64   `json:"farTermIv"`
	Put25DeltaIV float64   `json:"put25DeltaIv"`
	Call25DeltaIV float64  `json:"call25DeltaIv"`
}
