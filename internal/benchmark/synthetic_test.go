package benchmark

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/pkg/types"
)

func syntheticConfig(seed int64) types.SyntheticConfig {
	return types.SyntheticConfig{
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		InitialValue: decimal.NewFromInt(100000),
		Seed:         seed,
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewSyntheticGenerator(zap.NewNop())

	a := g.Generate(syntheticConfig(42))
	b := g.Generate(syntheticConfig(42))

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, a[i].Date.Equal(b[i].Date))
		assert.True(t, a[i].Equity.Equal(b[i].Equity), "equity diverged at %d", i)
		assert.True(t, a[i].Drawdown.Equal(b[i].Drawdown))
	}
}

func TestGenerateSeedSensitivity(t *testing.T) {
	g := NewSyntheticGenerator(zap.NewNop())

	a := g.Generate(syntheticConfig(42))
	b := g.Generate(syntheticConfig(43))
	require.Equal(t, len(a), len(b))

	diverged := false
	for i := range a {
		if !a[i].Equity.Equal(b[i].Equity) {
			diverged = true
			break
		}
	}
	assert.True(t, diverged, "different seeds produced identical series")
}

func TestGenerateSkipsWeekends(t *testing.T) {
	g := NewSyntheticGenerator(zap.NewNop())

	curve := g.Generate(syntheticConfig(7))
	require.NotEmpty(t, curve)

	for _, p := range curve {
		wd := p.Date.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestGenerateStartsAtInitialValue(t *testing.T) {
	g := NewSyntheticGenerator(zap.NewNop())

	curve := g.Generate(syntheticConfig(42))
	require.NotEmpty(t, curve)
	assert.True(t, curve[0].Equity.Equal(decimal.NewFromInt(100000)))
	assert.True(t, curve[0].Drawdown.IsZero())
}

func TestGenerateInvalidRange(t *testing.T) {
	g := NewSyntheticGenerator(zap.NewNop())

	cfg := syntheticConfig(42)
	cfg.EndDate = cfg.StartDate.AddDate(0, 0, -1)
	assert.Nil(t, g.Generate(cfg))
}

func TestGenerateDefaultsNonPositiveInitial(t *testing.T) {
	g := NewSyntheticGenerator(zap.NewNop())

	cfg := syntheticConfig(42)
	cfg.InitialValue = decimal.Zero
	curve := g.Generate(cfg)
	require.NotEmpty(t, curve)
	assert.True(t, curve[0].Equity.Equal(decimal.NewFromInt(10000)))
}

func TestGenerateValuesStayPositive(t *testing.T) {
	g := NewSyntheticGenerator(zap.NewNop())

	cfg := syntheticConfig(99)
	cfg.EndDate = cfg.StartDate.AddDate(2, 0, 0)
	for _, p := range g.Generate(cfg) {
		assert.True(t, p.Equity.GreaterThan(decimal.Zero))
	}
}
