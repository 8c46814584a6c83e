package cache

import (
	"sync"
	"time"

	"firstlight/internal/types"
)

// PredictionCache holds assembled score results for a short window so
// repeated requests for the same point skip selection and scoring
// entirely. Entries expire hard; there is no stale tier here because the
// document cache underneath already provides degradation.
type PredictionCache struct {
	mu    sync.RWMutex
	data  map[string]predictionEntry
	clock types.Clock
	ttl   time.Duration
}

type predictionEntry struct {
	result    *types.ScoreResult
	expiresAt time.Time
}

// NewPredictionCache creates a PredictionCache with the given TTL.
// A nil clock falls back to the real UTC clock.
func NewPredictionCache(clock types.Clock, ttl time.Duration) *PredictionCache {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &PredictionCache{
		data:  make(map[string]predictionEntry),
		clock: clock,
		ttl:   ttl,
	}
}

// Get returns the cached result for a point ID, or nil when absent or
// expired. Expired entries are removed lazily on the next Put.
func (c *PredictionCache) Get(pointID string) *types.ScoreResult {
	c.mu.RLock()
	e, ok := c.data[pointID]
	c.mu.RUnlock()

	if !ok || c.clock.Now().After(e.expiresAt) {
		return nil
	}
	return e.result
}

// Put stores a result for a point ID and opportunistically drops any
// expired entries to bound the map.
func (c *PredictionCache) Put(pointID string, result *types.ScoreResult) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for id, e := range c.data {
		if now.After(e.expiresAt) {
			delete(c.data, id)
		}
	}
	c.data[pointID] = predictionEntry{
		result:    result,
		expiresAt: now.Add(c.ttl),
	}
}

// Invalidate removes one point's cached result, if present.
func (c *PredictionCache) Invalidate(pointID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, pointID)
}
