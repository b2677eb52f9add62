package engine

import "sync"

// tokenLocks hands out one mutex per token id. Trades against the same token
// serialize their Validating -> Confirmed section on it; trades on distinct
// tokens proceed concurrently. Locks are never reclaimed: the set of tokens is
// small and append-only.
type tokenLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTokenLocks() *tokenLocks {
	return &tokenLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the token's mutex and returns the unlock function.
func (t *tokenLocks) acquire(tokenID string) func() {
	t.mu.Lock()
	l, ok := t.locks[tokenID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[tokenID] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
