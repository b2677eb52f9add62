package domain

import (
	"context"

	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

// FeeSplit is the gross-value decomposition applied at settlement.
type FeeSplit struct {
	ProtocolFeeMicros    quant.AmountMicros `json:"protocol_fee"`
	CreatorRoyaltyMicros quant.AmountMicros `json:"creator_royalty"`
	NetMicros            quant.AmountMicros `json:"net"`
}

// Submission is the trade payload handed to the settlement layer.
type Submission struct {
	TokenID     string             `json:"token_id"`
	Direction   Direction          `json:"direction"`
	Quantity    uint64             `json:"quantity"`
	GrossMicros quant.AmountMicros `json:"gross"`
	Split       FeeSplit           `json:"split"`

	Trader  string `json:"trader"`
	Creator string `json:"creator"`

	// IdempotencyKey makes replayed submissions settle at most once.
	IdempotencyKey string `json:"idempotency_key"`
}

// SettlementResult is the opaque confirmation handle from the external ledger.
type SettlementResult struct {
	Ref string `json:"ref"`
}

// Settlement is the external system of record that atomically finalizes a
// trade: either it fully applies the transfers on its own ledger or it has no
// effect. Submit may block for externally-bounded but unknown latency; it is
// the only suspension point in the trade pipeline.
//
// The interface lives here, next to the types it moves, so the engine and the
// settlement implementations do not import each other.
type Settlement interface {
	Submit(ctx context.Context, sub Submission) (SettlementResult, error)

	// Close releases connections and wipes signing material.
	Close() error
}
