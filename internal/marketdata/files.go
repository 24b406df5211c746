package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/pkg/types"
	"github.com/vega-desktop/analytics-backend/pkg/utils"
)

// FileChainProvider reads options-chain IV snapshots from per-symbol
// JSON files in the data directory. A missing file is the normal case
// for most symbols and surfaces as ErrNoChain.
type FileChainProvider struct {
	logger  *zap.Logger
	dataDir string
}

// NewFileChainProvider creates a chain provider rooted at dataDir.
func NewFileChainProvider(logger *zap.Logger, dataDir string) *FileChainProvider {
	return &FileChainProvider{logger: logger, dataDir: dataDir}
}

// GetImpliedVolatilitySnapshot implements ChainProvider.
func (p *FileChainProvider) GetImpliedVolatilitySnapshot(ctx context.Context, symbol string, asOf time.Time) (*types.OptionChainSnapshot, error) {
	filename := filepath.Join(p.dataDir, fmt.Sprintf("%s_chain.json", utils.FormatSymbol(symbol)))

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoChain
		}
		return nil, fmt.Errorf("read chain file: %w", err)
	}

	var snapshot types.OptionChainSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse chain file: %w", err)
	}

	if snapshot.CurrentIV <= 0 {
		return nil, ErrNoChain
	}

	return &snapshot, nil
}

// FileVolIndexProvider reads a broad market volatility-index level from
// volindex.json in the data directory.
type FileVolIndexProvider struct {
	dataDir string
}

// NewFileVolIndexProvider creates a vol-index provider rooted at dataDir.
func NewFileVolIndexProvider(dataDir string) *FileVolIndexProvider {
	return &FileVolIndexProvider{dataDir: dataDir}
}

// GetVolatilityIndexLevel implements VolIndexProvider.
func (p *FileVolIndexProvider) GetVolatilityIndexLevel(ctx context.Context, asOf time.Time) (float64, error) {
	filename := filepath.Join(p.dataDir, "volindex.json")

	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("read vol index: %w", err)
	}

	var payload struct {
		Level float64 `json:"level"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("parse vol index: %w", err)
	}

	if payload.Level <= 0 {
		return 0, fmt.Errorf("vol index level missing")
	}

	return payload.Level, nil
}
