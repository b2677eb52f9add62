package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/pkg/quant"
	"github.com/Natsgol/Seilor.fun/pkg/safe"
)

// Sim settles trades against in-memory account balances, mirroring the
// transfer pattern of the on-chain contract:
//
//	buy:  trader pays gross into the reserve; the reserve pays the protocol
//	      fee to admin and the royalty plus net to the creator
//	sell: the reserve pays the trader net, admin the fee, creator the royalty
//
// The reserve account may go negative; only the trader balance is enforced.
// Replayed idempotency keys return the original reference without moving
// funds again.
type Sim struct {
	mu       sync.Mutex
	balances map[string]quant.AmountMicros
	refs     map[string]string

	admin string
}

// Reserve is the internal account the curve trades against.
const Reserve = "sim:reserve"

// NewSim creates a simulator with empty balances. Admin receives protocol
// fees.
func NewSim(admin string) *Sim {
	return &Sim{
		balances: make(map[string]quant.AmountMicros),
		refs:     make(map[string]string),
		admin:    admin,
	}
}

// Fund credits an account. Test and demo setup only.
func (s *Sim) Fund(account string, amount quant.AmountMicros) {
	s.mu.Lock()
	s.balances[account] = quant.AmountMicros(safe.SafeAdd(int64(s.balances[account]), int64(amount)))
	s.mu.Unlock()
}

// Balance reads an account balance.
func (s *Sim) Balance(account string) quant.AmountMicros {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[account]
}

// Submit applies the trade's transfers atomically under the simulator lock.
func (s *Sim) Submit(_ context.Context, sub domain.Submission) (domain.SettlementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ref, ok := s.refs[sub.IdempotencyKey]; ok {
		return domain.SettlementResult{Ref: ref}, nil
	}

	switch sub.Direction {
	case domain.DirectionBuy:
		if s.balances[sub.Trader] < sub.GrossMicros {
			return domain.SettlementResult{}, fmt.Errorf("%w: %s has %s, needs %s",
				domain.ErrInsufficientFunds, sub.Trader,
				s.balances[sub.Trader], sub.GrossMicros)
		}
		s.transfer(sub.Trader, Reserve, sub.GrossMicros)
		s.transfer(Reserve, s.admin, sub.Split.ProtocolFeeMicros)
		s.transfer(Reserve, sub.Creator,
			quant.AmountMicros(safe.SafeAdd(int64(sub.Split.CreatorRoyaltyMicros), int64(sub.Split.NetMicros))))

	case domain.DirectionSell:
		s.transfer(Reserve, sub.Trader, sub.Split.NetMicros)
		s.transfer(Reserve, s.admin, sub.Split.ProtocolFeeMicros)
		s.transfer(Reserve, sub.Creator, sub.Split.CreatorRoyaltyMicros)

	default:
		return domain.SettlementResult{}, fmt.Errorf("unknown direction %d", sub.Direction)
	}

	ref := "sim-" + uuid.NewString()
	s.refs[sub.IdempotencyKey] = ref

	slog.Debug("Sim settlement confirmed",
		slog.String("token", sub.TokenID),
		slog.String("direction", sub.Direction.String()),
		slog.String("gross", sub.GrossMicros.String()),
		slog.String("ref", ref))
	return domain.SettlementResult{Ref: ref}, nil
}

// Close wipes balances.
func (s *Sim) Close() error {
	s.mu.Lock()
	s.balances = make(map[string]quant.AmountMicros)
	s.mu.Unlock()
	return nil
}

// transfer moves amount between accounts. Caller holds the lock.
func (s *Sim) transfer(from, to string, amount quant.AmountMicros) {
	s.balances[from] = quant.AmountMicros(safe.SafeSub(int64(s.balances[from]), int64(amount)))
	s.balances[to] = quant.AmountMicros(safe.SafeAdd(int64(s.balances[to]), int64(amount)))
}
