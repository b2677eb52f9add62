// Package settlement provides the external-ledger backends a trade can be
// finalized against: an in-memory simulator with account balances, a
// no-op mock, and a chain RPC client.
package settlement

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Natsgol/Seilor.fun/internal/domain"
)

// Mock confirms every submission without moving any funds. Useful for wiring
// tests and demos where settlement economics do not matter.
type Mock struct{}

// NewMock creates a mock settlement backend.
func NewMock() *Mock {
	slog.Warn("MOCK settlement active: every trade confirms, no funds move")
	return &Mock{}
}

// Submit always confirms.
func (m *Mock) Submit(_ context.Context, sub domain.Submission) (domain.SettlementResult, error) {
	ref := "mock-" + uuid.NewString()
	slog.Info("Mock settlement confirmed",
		slog.String("token", sub.TokenID),
		slog.String("direction", sub.Direction.String()),
		slog.String("gross", sub.GrossMicros.String()),
		slog.String("ref", ref))
	return domain.SettlementResult{Ref: ref}, nil
}

// Close is a no-op.
func (m *Mock) Close() error { return nil }
