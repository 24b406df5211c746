package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(zap.NewNop(), types.DataConfig{
		DataDir:    t.TempDir(),
		SampleSeed: 42,
	})
	require.NoError(t, err)
	return store
}

func testRange() (time.Time, time.Time) {
	return time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
}

func TestSampleBarsDeterministic(t *testing.T) {
	start, end := testRange()

	a, err := testStore(t).GetHistoricalBars(context.Background(), "SPY", start, end)
	require.NoError(t, err)
	b, err := testStore(t).GetHistoricalBars(context.Background(), "SPY", start, end)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, a[i].Close.Equal(b[i].Close), "close diverged at bar %d", i)
		assert.True(t, a[i].Timestamp.Equal(b[i].Timestamp))
	}
}

func TestSampleBarsVaryBySymbol(t *testing.T) {
	store := testStore(t)
	start, end := testRange()

	spy, err := store.GetHistoricalBars(context.Background(), "SPY", start, end)
	require.NoError(t, err)
	qqq, err := store.GetHistoricalBars(context.Background(), "QQQ", start, end)
	require.NoError(t, err)

	require.Equal(t, len(spy), len(qqq))
	assert.False(t, spy[0].Close.Equal(qqq[0].Close))
}

func TestSampleBarsSkipWeekends(t *testing.T) {
	store := testStore(t)
	start, end := testRange()

	bars, err := store.GetHistoricalBars(context.Background(), "SPY", start, end)
	require.NoError(t, err)
	require.NotEmpty(t, bars)

	for _, bar := range bars {
		wd := bar.Timestamp.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestSampleBarsSaneOHLC(t *testing.T) {
	store := testStore(t)
	start, end := testRange()

	bars, err := store.GetHistoricalBars(context.Background(), "IWM", start, end)
	require.NoError(t, err)

	for i, bar := range bars {
		assert.True(t, bar.High.GreaterThanOrEqual(bar.Open), "bar %d high < open", i)
		assert.True(t, bar.High.GreaterThanOrEqual(bar.Close), "bar %d high < close", i)
		assert.True(t, bar.Low.LessThanOrEqual(bar.Open), "bar %d low > open", i)
		assert.True(t, bar.Low.LessThanOrEqual(bar.Close), "bar %d low > close", i)
		assert.True(t, bar.Close.GreaterThan(decimal.Zero))
	}
}

func TestSaveAndReloadBars(t *testing.T) {
	store := testStore(t)
	start, end := testRange()

	bars := []types.PricePoint{
		{
			Timestamp: start,
			Open:      decimal.NewFromInt(100),
			High:      decimal.NewFromInt(102),
			Low:       decimal.NewFromInt(99),
			Close:     decimal.NewFromInt(101),
			Volume:    decimal.NewFromInt(50000),
		},
		{
			Timestamp: start.AddDate(0, 0, 1),
			Open:      decimal.NewFromInt(101),
			High:      decimal.NewFromInt(103),
			Low:       decimal.NewFromInt(100),
			Close:     decimal.NewFromInt(102),
			Volume:    decimal.NewFromInt(60000),
		},
	}
	require.NoError(t, store.SaveBars("tlt", bars))

	// Symbol normalization applies on both write and read
	store.ClearCache()
	loaded, err := store.GetHistoricalBars(context.Background(), "TLT", start, end)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.True(t, loaded[1].Close.Equal(decimal.NewFromInt(102)))

	assert.Equal(t, []string{"TLT"}, store.AvailableSymbols())
}

func TestGetHistoricalBarsFiltersRange(t *testing.T) {
	store := testStore(t)
	start, _ := testRange()

	bars := make([]types.PricePoint, 10)
	for i := range bars {
		bars[i] = types.PricePoint{
			Timestamp: start.AddDate(0, 0, i),
			Open:      decimal.NewFromInt(100),
			High:      decimal.NewFromInt(100),
			Low:       decimal.NewFromInt(100),
			Close:     decimal.NewFromInt(100),
			Volume:    decimal.NewFromInt(1),
		}
	}
	require.NoError(t, store.SaveBars("GLD", bars))

	loaded, err := store.GetHistoricalBars(context.Background(), "GLD", start.AddDate(0, 0, 2), start.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Len(t, loaded, 4)
}

func TestMetadataSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := types.DataConfig{DataDir: dir, SampleSeed: 42}
	start, _ := testRange()

	store, err := NewStore(zap.NewNop(), cfg)
	require.NoError(t, err)
	require.NoError(t, store.SaveBars("SPY", []types.PricePoint{{
		Timestamp: start,
		Open:      decimal.NewFromInt(1),
		High:      decimal.NewFromInt(1),
		Low:       decimal.NewFromInt(1),
		Close:     decimal.NewFromInt(1),
		Volume:    decimal.NewFromInt(1),
	}}))

	reopened, err := NewStore(zap.NewNop(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPY"}, reopened.AvailableSymbols())
}
