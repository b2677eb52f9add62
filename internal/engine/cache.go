package engine

import (
	"sync"

	"github.com/Natsgol/Seilor.fun/internal/domain"
)

// resultCache holds one trade per idempotency key. A non-terminal entry marks
// a key as executing; a terminal entry is the replay result. Entries are never
// evicted within a process lifetime.
type resultCache struct {
	mu     sync.Mutex
	trades map[string]*domain.Trade
}

func newResultCache() *resultCache {
	return &resultCache{trades: make(map[string]*domain.Trade)}
}

// claim registers tr under key unless a prior entry exists. Returns whether
// the claim succeeded and, if not, the prior entry.
func (c *resultCache) claim(key string, tr *domain.Trade) (bool, *domain.Trade) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prior, ok := c.trades[key]; ok {
		return false, prior
	}
	c.trades[key] = tr
	return true, nil
}

// store overwrites the entry with the terminal result.
func (c *resultCache) store(key string, tr *domain.Trade) {
	c.mu.Lock()
	c.trades[key] = tr
	c.mu.Unlock()
}

// terminal returns the stored trade when it has reached a terminal state.
func (c *resultCache) terminal(key string) (*domain.Trade, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tr, ok := c.trades[key]
	if !ok || !tr.Status.Terminal() {
		return nil, false
	}
	return tr, true
}
