package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Natsgol/Seilor.fun/internal/curve"
	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/internal/ledger"
	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

// Quoter derives executable quotes from the curve and the current supply
// snapshot. Read-only: quoting never touches the ledger.
type Quoter struct {
	ledger *ledger.SupplyLedger
	model  *curve.Model

	// maxQty is the per-trade quantity cap.
	maxQty uint64

	now func() quant.TimeStamp
}

// NewQuoter creates a quote engine.
func NewQuoter(l *ledger.SupplyLedger, m *curve.Model, maxQty uint64) *Quoter {
	return &Quoter{
		ledger: l,
		model:  m,
		maxQty: maxQty,
		now:    quant.Now,
	}
}

// Quote prices a trade of qty whole tokens against the current supply
// snapshot and attaches the slippage bound. The quote is valid only against
// the snapshot it embeds.
func (q *Quoter) Quote(tokenID, trader string, dir domain.Direction, qty uint64, slippageBps uint32) (*domain.Quote, error) {
	if qty == 0 || qty > q.maxQty {
		return nil, fmt.Errorf("%w: %d (cap %d)", domain.ErrQuantityOutOfRange, qty, q.maxQty)
	}
	if slippageBps > 10000 {
		return nil, fmt.Errorf("%w: slippage %d bps", domain.ErrInvalidPercentage, slippageBps)
	}
	if dir != domain.DirectionBuy && dir != domain.DirectionSell {
		return nil, fmt.Errorf("unknown direction %d", dir)
	}

	snapshot, err := q.ledger.Supply(tokenID)
	if err != nil {
		return nil, err
	}
	if dir == domain.DirectionSell && qty > snapshot {
		return nil, fmt.Errorf("%w: supply %d cannot cover sell of %d",
			domain.ErrInsufficientSupply, snapshot, qty)
	}
	if dir == domain.DirectionBuy {
		if limit := q.model.Params().MaxSupply; snapshot+qty < snapshot || snapshot+qty > limit {
			return nil, fmt.Errorf("%w: supply %d + %d exceeds maximum %d",
				domain.ErrInvalidSupply, snapshot, qty, limit)
		}
	}

	gross, err := grossValue(q.model, dir, snapshot, qty)
	if err != nil {
		return nil, err
	}

	quotesIssued.WithLabelValues(dir.String()).Inc()

	return &domain.Quote{
		ID:               uuid.NewString(),
		TokenID:          tokenID,
		Trader:           trader,
		Direction:        dir,
		Quantity:         qty,
		SupplySnapshot:   snapshot,
		UnitPriceMicros:  quant.PriceMicros(int64(gross) / int64(qty)),
		GrossMicros:      gross,
		BoundGrossMicros: grossBound(gross, dir, slippageBps),
		SlippageBps:      slippageBps,
		CreatedUnixM:     q.now(),
	}, nil
}
