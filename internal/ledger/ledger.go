// Package ledger owns the authoritative circulating-supply counter per token.
// All components read snapshots; the one mutation point is the executor's
// confirmed transition, which goes through Apply.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

// SupplyLedger is the process-wide token registry. Reads are concurrent;
// writes are confined to Mint and Apply.
type SupplyLedger struct {
	mu     sync.RWMutex
	tokens map[string]*domain.Token

	store     *Store // optional; nil means in-memory only
	maxSupply uint64
}

// NewSupplyLedger creates a ledger. store may be nil for ephemeral use.
func NewSupplyLedger(store *Store, maxSupply uint64) *SupplyLedger {
	return &SupplyLedger{
		tokens:    make(map[string]*domain.Token),
		store:     store,
		maxSupply: maxSupply,
	}
}

// Recover reloads tokens from the store. Call once at boot, before serving.
func (l *SupplyLedger) Recover(ctx context.Context) error {
	if l.store == nil {
		slog.Info("No store configured, starting with an empty ledger")
		return nil
	}

	tokens, err := l.store.LoadTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover ledger: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range tokens {
		t := tokens[i]
		l.tokens[t.ID] = &t
	}
	slog.Info("Ledger recovered", slog.Int("tokens", len(tokens)))
	return nil
}

// Mint registers a new token with zero or the given starting supply.
func (l *SupplyLedger) Mint(ctx context.Context, t domain.Token) (domain.Token, error) {
	if err := t.Validate(); err != nil {
		return domain.Token{}, err
	}
	if t.CreatedUnixM == 0 {
		t.CreatedUnixM = quant.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.tokens[t.ID]; exists {
		return domain.Token{}, fmt.Errorf("%w: %s", domain.ErrDuplicateToken, t.ID)
	}
	if l.store != nil {
		if err := l.store.InsertToken(ctx, &t); err != nil {
			return domain.Token{}, err
		}
	}
	stored := t
	l.tokens[t.ID] = &stored

	slog.Info("Token minted",
		slog.String("token", t.ID),
		slog.String("creator", t.Creator),
		slog.Uint64("royalty_pct", uint64(t.RoyaltyPercent)))
	return t, nil
}

// Supply returns the current supply snapshot for a token.
func (l *SupplyLedger) Supply(tokenID string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.tokens[tokenID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrTokenNotFound, tokenID)
	}
	return t.Supply, nil
}

// Token returns a copy of the token.
func (l *SupplyLedger) Token(tokenID string) (domain.Token, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.tokens[tokenID]
	if !ok {
		return domain.Token{}, fmt.Errorf("%w: %s", domain.ErrTokenNotFound, tokenID)
	}
	return *t, nil
}

// Tokens returns a copy of every token, for listing.
func (l *SupplyLedger) Tokens() []domain.Token {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Token, 0, len(l.tokens))
	for _, t := range l.tokens {
		out = append(out, *t)
	}
	return out
}

// Apply moves supply for a confirmed trade and persists the trade journal
// entry atomically with the counter. This is the single mutation point;
// callers must hold the per-token execution lock.
func (l *SupplyLedger) Apply(ctx context.Context, tr *domain.Trade) error {
	if tr.Status != domain.StatusConfirmed {
		return fmt.Errorf("apply requires a confirmed trade, got %s", tr.Status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.tokens[tr.TokenID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTokenNotFound, tr.TokenID)
	}

	var newSupply uint64
	switch tr.Direction {
	case domain.DirectionBuy:
		newSupply = t.Supply + tr.Quantity
		if newSupply < t.Supply || newSupply > l.maxSupply {
			return fmt.Errorf("%w: supply %d + %d exceeds maximum %d",
				domain.ErrInvalidSupply, t.Supply, tr.Quantity, l.maxSupply)
		}
	case domain.DirectionSell:
		if tr.Quantity > t.Supply {
			return fmt.Errorf("%w: supply %d cannot cover sell of %d",
				domain.ErrInsufficientSupply, t.Supply, tr.Quantity)
		}
		newSupply = t.Supply - tr.Quantity
	default:
		return fmt.Errorf("unknown direction %d", tr.Direction)
	}

	if l.store != nil {
		if err := l.store.SaveConfirmedTrade(ctx, tr, newSupply); err != nil {
			return err
		}
	}
	t.Supply = newSupply
	return nil
}

// RecordTerminal persists a non-confirmed terminal trade (rejected/expired)
// for idempotent replay. No supply movement.
func (l *SupplyLedger) RecordTerminal(ctx context.Context, tr *domain.Trade) error {
	if !tr.Status.Terminal() || tr.Status == domain.StatusConfirmed {
		return fmt.Errorf("record terminal requires a rejected or expired trade, got %s", tr.Status)
	}
	if l.store == nil {
		return nil
	}
	return l.store.SaveTrade(ctx, tr)
}

// StoredTrade looks up a persisted trade by idempotency key.
// Returns nil when the store is absent or has no entry.
func (l *SupplyLedger) StoredTrade(ctx context.Context, idempotencyKey string) (*domain.Trade, error) {
	if l.store == nil {
		return nil, nil
	}
	return l.store.GetTrade(ctx, idempotencyKey)
}
