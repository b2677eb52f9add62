package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Natsgol/Seilor.fun/internal/curve"
	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/internal/fees"
	"github.com/Natsgol/Seilor.fun/internal/ledger"
	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

// Executor drives a single trade through
// Quoted -> Validating -> Submitted -> Confirmed | Rejected | Expired.
//
// Trades against the same token serialize on a per-token lock from validation
// through confirmation, so no two trades can validate against the same stale
// supply snapshot. The settlement submit call happens inside that section and
// is the only point that may block on external latency.
type Executor struct {
	ledger *ledger.SupplyLedger
	model  *curve.Model
	settle domain.Settlement
	feeBps uint32

	locks *tokenLocks

	// inflight tracks trades by idempotency key for the lifetime of the
	// process; terminal entries implement the replay contract in memory,
	// the ledger store implements it across restarts.
	inflight *resultCache

	now func() quant.TimeStamp
}

// NewExecutor wires the trade pipeline.
func NewExecutor(l *ledger.SupplyLedger, m *curve.Model, s domain.Settlement, platformFeeBps uint32) *Executor {
	return &Executor{
		ledger:   l,
		model:    m,
		settle:   s,
		feeBps:   platformFeeBps,
		locks:    newTokenLocks(),
		inflight: newResultCache(),
		now:      quant.Now,
	}
}

// Execute runs a confirmed quote to a terminal state. Re-execution under an
// already-terminal idempotency key is a no-op returning the stored result and
// its original error kind.
func (e *Executor) Execute(ctx context.Context, q *domain.Quote, idempotencyKey string) (*domain.Trade, error) {
	if idempotencyKey == "" {
		return nil, fmt.Errorf("idempotency key required")
	}

	if tr, err := e.replay(ctx, idempotencyKey); tr != nil || err != nil {
		return tr, err
	}

	tr := domain.NewTrade(q, idempotencyKey, e.now())
	claimed, prior := e.inflight.claim(idempotencyKey, tr)
	if !claimed {
		if prior.Status.Terminal() {
			return prior, prior.Err()
		}
		return nil, fmt.Errorf("%w: key %s is executing", domain.ErrQuoteConsumed, idempotencyKey)
	}

	unlock := e.locks.acquire(q.TokenID)
	defer unlock()

	// Validating: re-check the quote against the supply as of our position in
	// the per-token order.
	if err := tr.Advance(domain.StatusValidating, e.now()); err != nil {
		return nil, err
	}

	supply, err := e.ledger.Supply(q.TokenID)
	if err != nil {
		return e.reject(ctx, tr, err)
	}
	if q.Direction == domain.DirectionSell && q.Quantity > supply {
		return e.reject(ctx, tr, fmt.Errorf("%w: supply %d cannot cover sell of %d",
			domain.ErrInsufficientSupply, supply, q.Quantity))
	}
	if q.Direction == domain.DirectionBuy {
		if limit := e.model.Params().MaxSupply; supply+q.Quantity < supply || supply+q.Quantity > limit {
			return e.reject(ctx, tr, fmt.Errorf("%w: supply %d + %d exceeds maximum %d",
				domain.ErrInvalidSupply, supply, q.Quantity, limit))
		}
	}

	execGross, err := grossValue(e.model, q.Direction, supply, q.Quantity)
	if err != nil {
		return e.reject(ctx, tr, err)
	}
	if supply != q.SupplySnapshot && !withinBound(execGross, q.BoundGrossMicros, q.Direction) {
		return e.reject(ctx, tr, fmt.Errorf("%w: execution gross %s outside bound %s",
			domain.ErrSlippageExceeded, execGross, q.BoundGrossMicros))
	}

	token, err := e.ledger.Token(q.TokenID)
	if err != nil {
		return e.reject(ctx, tr, err)
	}
	split, err := fees.Split(execGross, e.feeBps, token.RoyaltyPercent)
	if err != nil {
		return e.reject(ctx, tr, err)
	}

	tr.ExecGrossMicros = execGross
	tr.FeeMicros = split.ProtocolFeeMicros
	tr.RoyaltyMicros = split.CreatorRoyaltyMicros
	tr.NetMicros = split.NetMicros

	// Submitted: hand off to the external ledger. May suspend; no internal
	// timeout and no auto-retry — a retried submission must come back through
	// Execute with the same idempotency key.
	if err := tr.Advance(domain.StatusSubmitted, e.now()); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := e.settle.Submit(ctx, domain.Submission{
		TokenID:        q.TokenID,
		Direction:      q.Direction,
		Quantity:       q.Quantity,
		GrossMicros:    execGross,
		Split:          split,
		Trader:         q.Trader,
		Creator:        token.Creator,
		IdempotencyKey: idempotencyKey,
	})
	settlementLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return e.reject(ctx, tr, settlementError(err))
	}

	// Confirmed: the single supply mutation point, exactly once per
	// settlement reference.
	tr.SettlementRef = res.Ref
	if err := tr.Advance(domain.StatusConfirmed, e.now()); err != nil {
		return nil, err
	}
	if err := e.ledger.Apply(ctx, tr); err != nil {
		// The external ledger has settled but ours cannot record it; halting
		// beats serving prices from a counter known to be wrong.
		panic(fmt.Sprintf("PERSISTENCE_FAILURE: confirmed trade %s: %v", idempotencyKey, err))
	}
	e.finish(tr)

	slog.Info("Trade confirmed",
		slog.String("token", tr.TokenID),
		slog.String("direction", tr.Direction.String()),
		slog.Uint64("quantity", tr.Quantity),
		slog.String("gross", tr.ExecGrossMicros.String()),
		slog.String("ref", tr.SettlementRef))
	return tr, nil
}

// Abandon expires a quote before submission. Terminal; nothing is settled and
// supply does not move. Idempotent under the same key rules as Execute.
func (e *Executor) Abandon(ctx context.Context, q *domain.Quote, idempotencyKey string) (*domain.Trade, error) {
	if idempotencyKey == "" {
		return nil, fmt.Errorf("idempotency key required")
	}
	if tr, err := e.replay(ctx, idempotencyKey); tr != nil || err != nil {
		return tr, err
	}

	tr := domain.NewTrade(q, idempotencyKey, e.now())
	claimed, prior := e.inflight.claim(idempotencyKey, tr)
	if !claimed {
		if prior.Status.Terminal() {
			return prior, prior.Err()
		}
		return nil, fmt.Errorf("%w: key %s is executing", domain.ErrQuoteConsumed, idempotencyKey)
	}

	if err := tr.Advance(domain.StatusExpired, e.now()); err != nil {
		return nil, err
	}
	if err := e.ledger.RecordTerminal(ctx, tr); err != nil {
		slog.Warn("Failed to persist expired trade", slog.String("key", idempotencyKey), slog.Any("error", err))
	}
	e.finish(tr)
	return tr, nil
}

// Lookup returns the terminal trade stored under an idempotency key, or nil
// when the key is unknown or still in flight. The trade's original error kind
// is not raised; callers read it from the trade itself.
func (e *Executor) Lookup(ctx context.Context, idempotencyKey string) (*domain.Trade, error) {
	if tr, ok := e.inflight.terminal(idempotencyKey); ok {
		return tr, nil
	}
	return e.ledger.StoredTrade(ctx, idempotencyKey)
}

// replay returns the stored terminal trade for a key, if any.
func (e *Executor) replay(ctx context.Context, key string) (*domain.Trade, error) {
	if tr, ok := e.inflight.terminal(key); ok {
		return tr, tr.Err()
	}
	tr, err := e.ledger.StoredTrade(ctx, key)
	if err != nil {
		return nil, err
	}
	if tr != nil {
		return tr, tr.Err()
	}
	return nil, nil
}

// reject finishes a trade in Rejected with the specific cause.
func (e *Executor) reject(ctx context.Context, tr *domain.Trade, cause error) (*domain.Trade, error) {
	if err := tr.Advance(domain.StatusRejected, e.now()); err != nil {
		return nil, err
	}
	tr.Reason = domain.RejectionReason(cause)

	if err := e.ledger.RecordTerminal(ctx, tr); err != nil {
		slog.Warn("Failed to persist rejected trade",
			slog.String("key", tr.IdempotencyKey), slog.Any("error", err))
	}
	e.finish(tr)

	slog.Info("Trade rejected",
		slog.String("token", tr.TokenID),
		slog.String("direction", tr.Direction.String()),
		slog.String("reason", tr.Reason))
	return tr, cause
}

func (e *Executor) finish(tr *domain.Trade) {
	e.inflight.store(tr.IdempotencyKey, tr)
	tradesTerminal.WithLabelValues(tr.Direction.String(), tr.Status.String()).Inc()
}

// settlementError normalizes collaborator failures onto the taxonomy.
func settlementError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrSettlementTimeout),
		errors.Is(err, domain.ErrSettlementRejected):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrSettlementTimeout, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrSettlementRejected, err)
	}
}
