package server

import (
	"sync"
	"time"

	"github.com/Natsgol/Seilor.fun/internal/domain"
)

// quoteCache holds issued quotes until they are executed, abandoned or age
// out. Quotes never survive a restart: a client of a restarted server must
// re-quote, which is the conservative behavior for price offers.
type quoteCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cachedQuote
}

type cachedQuote struct {
	quote   *domain.Quote
	expires time.Time
}

func newQuoteCache(ttl time.Duration) *quoteCache {
	return &quoteCache{
		ttl:     ttl,
		entries: make(map[string]cachedQuote),
	}
}

func (c *quoteCache) put(q *domain.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	c.entries[q.ID] = cachedQuote{quote: q, expires: time.Now().Add(c.ttl)}
}

// take removes and returns the quote, enforcing single consumption.
func (c *quoteCache) take(id string) (*domain.Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || time.Now().After(e.expires) {
		delete(c.entries, id)
		return nil, false
	}
	delete(c.entries, id)
	return e.quote, true
}

// sweepLocked drops aged entries. Caller holds the lock.
func (c *quoteCache) sweepLocked() {
	now := time.Now()
	for id, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, id)
		}
	}
}
