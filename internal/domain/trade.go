package domain

import (
	"fmt"

	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

// TradeStatus is the executor state machine position. Transitions are
// one-directional; no state is ever revisited.
type TradeStatus uint8

const (
	StatusQuoted TradeStatus = iota + 1
	StatusValidating
	StatusSubmitted
	StatusConfirmed
	StatusRejected
	StatusExpired
)

func (s TradeStatus) String() string {
	switch s {
	case StatusQuoted:
		return "QUOTED"
	case StatusValidating:
		return "VALIDATING"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusConfirmed:
		return "CONFIRMED"
	case StatusRejected:
		return "REJECTED"
	case StatusExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition is allowed.
func (s TradeStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected || s == StatusExpired
}

// Trade records a single pass through the executor. Never mutated after a
// terminal status is reached.
type Trade struct {
	QuoteID        string    `json:"quote_id"`
	TokenID        string    `json:"token_id"`
	Trader         string    `json:"trader"`
	Direction      Direction `json:"direction"`
	Quantity       uint64    `json:"quantity"`
	IdempotencyKey string    `json:"idempotency_key"`

	// Execution values. ExecGrossMicros is the gross at the execution supply,
	// which may differ from the quoted gross within the slippage bound.
	ExecGrossMicros quant.AmountMicros `json:"gross"`
	FeeMicros       quant.AmountMicros `json:"fee"`
	RoyaltyMicros   quant.AmountMicros `json:"royalty"`
	NetMicros       quant.AmountMicros `json:"net"`

	Status        TradeStatus `json:"status"`
	Reason        string      `json:"reason,omitempty"` // rejection cause for non-confirmed terminals
	SettlementRef string      `json:"settlement_ref,omitempty"`

	CreatedUnixM quant.TimeStamp `json:"created_at_unix"`
	UpdatedUnixM quant.TimeStamp `json:"updated_at_unix"`
}

// NewTrade starts a trade in StatusQuoted from an accepted quote.
func NewTrade(q *Quote, idempotencyKey string, now quant.TimeStamp) *Trade {
	return &Trade{
		QuoteID:        q.ID,
		TokenID:        q.TokenID,
		Trader:         q.Trader,
		Direction:      q.Direction,
		Quantity:       q.Quantity,
		IdempotencyKey: idempotencyKey,
		Status:         StatusQuoted,
		CreatedUnixM:   now,
		UpdatedUnixM:   now,
	}
}

// Advance moves the state machine forward. Illegal transitions are programming
// errors and return an error rather than silently rewriting history.
func (t *Trade) Advance(to TradeStatus, now quant.TimeStamp) error {
	if !validTransition(t.Status, to) {
		return fmt.Errorf("illegal trade transition %s -> %s", t.Status, to)
	}
	t.Status = to
	t.UpdatedUnixM = now
	return nil
}

// Err returns the sentinel error behind a rejected trade, nil otherwise.
func (t *Trade) Err() error {
	if t.Status != StatusRejected {
		return nil
	}
	return ReasonError(t.Reason)
}

func validTransition(from, to TradeStatus) bool {
	switch from {
	case StatusQuoted:
		return to == StatusValidating || to == StatusExpired
	case StatusValidating:
		return to == StatusSubmitted || to == StatusRejected || to == StatusExpired
	case StatusSubmitted:
		return to == StatusConfirmed || to == StatusRejected
	default:
		return false
	}
}
