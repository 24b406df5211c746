// Package types provides configuration types for the analytics backend.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServerConfig represents HTTP/WebSocket server configuration.
type ServerConfig struct {
	Host           string        `json:"host" mapstructure:"host"`
	Port           int           `json:"port" mapstructure:"port"`
	WebSocketPath  string        `json:"websocketPath" mapstructure:"websocket_path"`
	ReadTimeout    time.Duration `json:"readTimeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `json:"writeTimeout" mapstructure:"write_timeout"`
	EnableMetrics  bool          `json:"enableMetrics" mapstructure:"enable_metrics"`
	MetricsPort    int           `json:"metricsPort" mapstructure:"metrics_port"`
}

// DataConfig represents bar storage configuration.
type DataConfig struct {
	DataDir    string `json:"dataDir" mapstructure:"data_dir"`
	SampleSeed int64  `json:"sampleSeed" mapstructure:"sample_seed"`
}

// ScoreWeights are the independent weighted terms of the optimizer score.
// They deliberately do not need to sum to 1.
type ScoreWeights struct {
	WinRate  float64 `json:"winRate" mapstructure:"win_rate"`
	CAGR     float64 `json:"cagr" mapstructure:"cagr"`
	Drawdown float64 `json:"drawdown" mapstructure:"drawdown"`
}

// DefaultScoreWeights returns the documented default weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{WinRate: 0.6, CAGR: 0.4, Drawdown: 0.3}
}

// OptimizerConfig configures the grid-search parameter optimizer.
type OptimizerConfig struct {
	MaxIterations int          `json:"maxIterations" mapstructure:"max_iterations"`
	Workers       int          `json:"workers" mapstructure:"workers"`
	Weights       ScoreWeights `json:"weights" mapstructure:"weights"`
}

// OptimizationRequest describes a full grid-search run over a base
// simulation request plus a set of tunable parameters.
type OptimizationRequest struct {
	Base     SimulationRequest `json:"base"`
	Tunables []TunableParam    `json:"tunables"`
	MaxIter  int               `json:"maxIterations,omitempty"`
	Weights  *ScoreWeights     `json:"weights,omitempty"`
}

// TunableKind represents the kind of a tunable parameter.
type TunableKind string

const (
	TunableNumeric TunableKind = "numeric"
	TunableEnum    TunableKind = "enum"
	TunableBool    TunableKind = "bool"
)

// TunableParam represents one tunable strategy parameter: a numeric
// range with step, an enumerated option set, or a boolean flag.
type TunableParam struct {
	Name    string      `json:"name"`
	Kind    TunableKind `json:"kind"`
	Min     float64     `json:"min,omitempty"`
	Max     float64     `json:"max,omitempty"`
	Step    float64     `json:"step,omitempty"`
	Options []string    `json:"options,omitempty"`
}

// AnalysisRequest is the payload for risk/benchmark analysis calls.
type AnalysisRequest struct {
	EquityCurve []EquityPoint `json:"equityCurve"`
	Trades      []TradeRecord `json:"trades,omitempty"`
	Benchmark   []EquityPoint `json:"benchmark,omitempty"`
	Seed        int64         `json:"seed,omitempty"`
}

// SyntheticConfig configures the synthetic benchmark generator.
type SyntheticConfig struct {
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	InitialValue decimal.Decimal `json:"initialValue"`
	Seed         int64           `json:"seed"`
}
