package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

// Store provides file-backed access to historical daily bars. It caches
// loaded series in memory and generates deterministic sample data when a
// symbol has no data file, so the analytics pipeline always has input.
type Store struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	dataDir    string
	sampleSeed int64
	cache      map[string][]types.PricePoint
	metadata   map[string]*SymbolMetadata
}

// SymbolMetadata contains metadata about available data for a symbol.
type SymbolMetadata struct {
	Symbol    string    `json:"symbol"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	BarCount  int       `json:"barCount"`
}

// NewStore creates a new bar store rooted at dataDir.
func NewStore(logger *zap.Logger, cfg types.DataConfig) (*Store, error) {
	store := &Store{
		logger:     logger,
		dataDir:    cfg.DataDir,
		sampleSeed: cfg.SampleSeed,
		cache:      make(map[string][]types.PricePoint),
		metadata:   make(map[string]*SymbolMetadata),
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	if err := store.loadMetadata(); err != nil {
		logger.Warn("Failed to load metadata", zap.Error(err))
	}

	return store, nil
}

// GetHistoricalBars implements BarProvider.
func (s *Store) GetHistoricalBars(ctx context.Context, symbol string, start, end time.Time) ([]types.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = utils.FormatSymbol(symbol)

	if cached, ok := s.cache[symbol]; ok {
		return filterByTimeRange(cached, start, end), nil
	}

	filename := filepath.Join(s.dataDir, fmt.Sprintf("%s_1d.json", symbol))
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("Generating sample bars", zap.String("symbol", symbol))
			sample := s.generateSampleBars(symbol, start, end)
			s.cache[symbol] = sample
			return sample, nil
		}
		return nil, fmt.Errorf("read bar file: %w", err)
	}

	var bars []types.PricePoint
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, fmt.Errorf("parse bar file: %w", err)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	s.cache[symbol] = bars
	return filterByTimeRange(bars, start, end), nil
}

// SaveBars persists a bar series and updates the metadata index.
func (s *Store) SaveBars(symbol string, bars []types.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = utils.FormatSymbol(symbol)
	filename := filepath.Join(s.dataDir, fmt.Sprintf("%s_1d.json", symbol))

	data, err := json.MarshalIndent(bars, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bars: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write bar file: %w", err)
	}

	s.cache[symbol] = bars

	if len(bars) > 0 {
		s.metadata[symbol] = &SymbolMetadata{
			Symbol:    symbol,
			StartDate: bars[0].Timestamp,
			EndDate:   bars[len(bars)-1].Timestamp,
			BarCount:  len(bars),
		}
	}

	return s.saveMetadata()
}

// AvailableSymbols returns the symbols present in the metadata index.
func (s *Store) AvailableSymbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.metadata))
	for symbol := range s.metadata {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// ClearCache clears the in-memory bar cache.
func (s *Store) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string][]types.PricePoint)
}

func filterByTimeRange(bars []types.PricePoint, start, end time.Time) []types.PricePoint {
	var filtered []types.PricePoint
	for _, bar := range bars {
		if !bar.Timestamp.Before(start) && !bar.Timestamp.After(end) {
			filtered = append(filtered, bar)
		}
	}
	return filtered
}

// generateSampleBars produces a deterministic seeded random walk so
// repeated runs over the same symbol and range see identical bars.
func (s *Store) generateSampleBars(symbol string, start, end time.Time) []types.PricePoint {
	seed := s.sampleSeed
	for _, c := range symbol {
		seed = seed*31 + int64(c)
	}
	rng := utils.NewLCG(seed)

	price := 50 + rng.Float64()*400

	var bars []types.PricePoint
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		change := (rng.Float64() - 0.5) * 0.02 * price
		open := decimal.NewFromFloat(utils.RoundPlaces(price, 2))
		price += change
		closePrice := decimal.NewFromFloat(utils.RoundPlaces(price, 2))

		high := decimal.Max(open, closePrice).Mul(decimal.NewFromFloat(1 + rng.Float64()*0.005)).Round(2)
		low := decimal.Min(open, closePrice).Mul(decimal.NewFromFloat(1 - rng.Float64()*0.005)).Round(2)
		volume := decimal.NewFromFloat(utils.RoundPlaces(rng.Float64()*1000000, 0))

		bars = append(bars, types.PricePoint{
			Timestamp: day,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		})
	}

	return bars
}

func (s *Store) loadMetadata() error {
	filename := filepath.Join(s.dataDir, "metadata.json")

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var metadata map[string]*SymbolMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return err
	}

	s.metadata = metadata
	return nil
}

func (s *Store) saveMetadata() error {
	filename := filepath.Join(s.dataDir, "metadata.json")

	data, err := json.MarshalIndent(s.metadata, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
