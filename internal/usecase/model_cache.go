package usecase

import (
	"sync"

	"CoinPulse/internal/ml"
)

// ModelCache holds one trained model per symbol behind a per-symbol lock.
// The lock serializes training: at most one fill runs per symbol, and
// concurrent readers wait for it instead of kicking off their own.
type ModelCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	mu    sync.Mutex
	model *ml.TrainedModel
}

func NewModelCache() *ModelCache {
	return &ModelCache{entries: make(map[string]*cacheEntry)}
}

func (c *ModelCache) entry(symbol string) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[symbol]
	if !ok {
		e = &cacheEntry{}
		c.entries[symbol] = e
	}
	return e
}

// Get peeks at the cached model without filling.
func (c *ModelCache) Get(symbol string) (*ml.TrainedModel, bool) {
	e := c.entry(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model, e.model != nil
}

// GetOrFill returns the cached model, or runs fill under the symbol lock and
// caches its result. The bool reports a cache hit.
func (c *ModelCache) GetOrFill(symbol string, fill func() (*ml.TrainedModel, error)) (*ml.TrainedModel, bool, error) {
	e := c.entry(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model != nil {
		return e.model, true, nil
	}
	m, err := fill()
	if err != nil {
		return nil, false, err
	}
	e.model = m
	return m, false, nil
}

// Fill always runs fill under the symbol lock, replacing any cached model on
// success. In-flight readers of the same symbol block until it finishes.
func (c *ModelCache) Fill(symbol string, fill func() (*ml.TrainedModel, error)) (*ml.TrainedModel, error) {
	e := c.entry(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := fill()
	if err != nil {
		return nil, err
	}
	e.model = m
	return m, nil
}

// Invalidate drops the cached model for a symbol.
func (c *ModelCache) Invalidate(symbol string) {
	e := c.entry(symbol)
	e.mu.Lock()
	e.model = nil
	e.mu.Unlock()
}
