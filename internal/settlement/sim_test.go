package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

func buySubmission(key string, gross, fee, royalty int64) domain.Submission {
	return domain.Submission{
		TokenID:     "tok-1",
		Direction:   domain.DirectionBuy,
		Quantity:    1,
		GrossMicros: quant.AmountMicros(gross),
		Split: domain.FeeSplit{
			ProtocolFeeMicros:    quant.AmountMicros(fee),
			CreatorRoyaltyMicros: quant.AmountMicros(royalty),
			NetMicros:            quant.AmountMicros(gross - fee - royalty),
		},
		Trader:         "alice",
		Creator:        "carol",
		IdempotencyKey: key,
	}
}

func TestSim_BuyTransfers(t *testing.T) {
	sim := NewSim("admin")
	sim.Fund("alice", 1_000_000)

	res, err := sim.Submit(context.Background(), buySubmission("k1", 100_000, 10_000, 5_000))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.Ref == "" {
		t.Error("expected a settlement ref")
	}

	if got := sim.Balance("alice"); got != 900_000 {
		t.Errorf("trader balance = %d, want 900000", got)
	}
	if got := sim.Balance("admin"); got != 10_000 {
		t.Errorf("admin balance = %d, want 10000", got)
	}
	// Creator receives royalty plus net: 5000 + 85000
	if got := sim.Balance("carol"); got != 90_000 {
		t.Errorf("creator balance = %d, want 90000", got)
	}
	if got := sim.Balance(Reserve); got != 0 {
		t.Errorf("reserve balance = %d, want 0", got)
	}
}

func TestSim_SellTransfers(t *testing.T) {
	sim := NewSim("admin")

	sub := domain.Submission{
		TokenID:     "tok-1",
		Direction:   domain.DirectionSell,
		Quantity:    1,
		GrossMicros: 100_000,
		Split: domain.FeeSplit{
			ProtocolFeeMicros:    10_000,
			CreatorRoyaltyMicros: 5_000,
			NetMicros:            85_000,
		},
		Trader:         "alice",
		Creator:        "carol",
		IdempotencyKey: "k1",
	}
	if _, err := sim.Submit(context.Background(), sub); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if got := sim.Balance("alice"); got != 85_000 {
		t.Errorf("trader balance = %d, want 85000", got)
	}
	if got := sim.Balance("admin"); got != 10_000 {
		t.Errorf("admin balance = %d, want 10000", got)
	}
	if got := sim.Balance("carol"); got != 5_000 {
		t.Errorf("creator balance = %d, want 5000", got)
	}
	// The reserve runs negative when it has never been funded.
	if got := sim.Balance(Reserve); got != -100_000 {
		t.Errorf("reserve balance = %d, want -100000", got)
	}
}

func TestSim_InsufficientFunds(t *testing.T) {
	sim := NewSim("admin")
	sim.Fund("alice", 50_000)

	_, err := sim.Submit(context.Background(), buySubmission("k1", 100_000, 10_000, 5_000))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Nothing moved.
	if got := sim.Balance("alice"); got != 50_000 {
		t.Errorf("trader balance = %d, want 50000", got)
	}
	if got := sim.Balance("admin"); got != 0 {
		t.Errorf("admin balance = %d, want 0", got)
	}
}

func TestSim_IdempotentReplay(t *testing.T) {
	sim := NewSim("admin")
	sim.Fund("alice", 1_000_000)

	sub := buySubmission("k1", 100_000, 10_000, 5_000)
	first, err := sim.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	second, err := sim.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if first.Ref != second.Ref {
		t.Errorf("replay ref %s != original %s", second.Ref, first.Ref)
	}

	// Funds moved exactly once.
	if got := sim.Balance("alice"); got != 900_000 {
		t.Errorf("trader balance = %d, want 900000", got)
	}
}

func TestMock_AlwaysConfirms(t *testing.T) {
	m := NewMock()
	res, err := m.Submit(context.Background(), buySubmission("k1", 100_000, 10_000, 5_000))
	if err != nil {
		t.Fatalf("mock submit failed: %v", err)
	}
	if res.Ref == "" {
		t.Error("expected a settlement ref")
	}
}
