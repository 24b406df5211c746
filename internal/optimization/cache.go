package optimization

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/vega-desktop/analytics-backend/internal/monitoring"
	"github.com/vega-desktop/analytics-backend/pkg/types"
)

// Cache is a content-addressed store of simulator results keyed by the
// canonical serialization of the full effective parameter set. Values
// are immutable once written and never invalidated automatically;
// staleness is the caller's responsibility. Concurrent writes of the
// same key are idempotent duplicate work, not a race.
type Cache struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	entries map[string]*types.SimulationSummary
}

// NewCache creates an empty, disposable cache instance. The optimizer
// takes the cache as an explicit dependency so test runs can isolate
// their own.
func NewCache(logger *zap.Logger) *Cache {
	return &Cache{
		logger:  logger,
		entries: make(map[string]*types.SimulationSummary),
	}
}

// cacheKeyPayload is the canonical key shape. Field order is fixed and
// map keys are sorted by encoding/json, so serialization is stable.
type cacheKeyPayload struct {
	Ticker    string         `json:"ticker"`
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	Strategy  string         `json:"strategy"`
	Capital   string         `json:"capital"`
	Seed      int64          `json:"seed"`
	Overrides map[string]any `json:"overrides,omitempty"`
}

// CacheKey builds the content-addressed key for a simulation request.
func CacheKey(req types.SimulationRequest) string {
	payload := cacheKeyPayload{
		Ticker:    req.Ticker,
		StartDate: req.StartDate.Format("2006-01-02"),
		EndDate:   req.EndDate.Format("2006-01-02"),
		Strategy:  req.Strategy,
		Capital:   req.InitialCapital.String(),
		Seed:      req.Seed,
		Overrides: req.Overrides,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Only unmarshalable override values can land here; fall back to
		// an uncacheable unique-ish key rather than failing the run.
		data = []byte(req.Ticker + req.Strategy)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for a key, if present.
func (c *Cache) Get(key string) (*types.SimulationSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary, ok := c.entries[key]
	if ok {
		monitoring.RecordCacheHit()
	} else {
		monitoring.RecordCacheMiss()
	}
	return summary, ok
}

// Put stores a result under a key. Re-writing an existing key is a
// no-op since identical keys carry identical content.
func (c *Cache) Put(key string, summary *types.SimulationSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		return
	}
	c.entries[key] = summary
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
