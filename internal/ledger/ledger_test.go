package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/Natsgol/Seilor.fun/internal/domain"
)

func TestMintAndSupply(t *testing.T) {
	l := NewSupplyLedger(nil, 1000)
	ctx := context.Background()

	tok := domain.Token{ID: "tok1", Creator: "sei1creator", RoyaltyPercent: 5, Name: "Captain Nemo"}
	if _, err := l.Mint(ctx, tok); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	supply, err := l.Supply("tok1")
	if err != nil {
		t.Fatalf("Supply: %v", err)
	}
	if supply != 0 {
		t.Errorf("fresh token supply = %d; want 0", supply)
	}

	if _, err := l.Supply("missing"); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Errorf("Supply(missing) = %v; want ErrTokenNotFound", err)
	}
}

func TestMint_Duplicate(t *testing.T) {
	l := NewSupplyLedger(nil, 1000)
	ctx := context.Background()

	tok := domain.Token{ID: "tok1", Creator: "sei1creator"}
	if _, err := l.Mint(ctx, tok); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Mint(ctx, tok); !errors.Is(err, domain.ErrDuplicateToken) {
		t.Errorf("second mint = %v; want ErrDuplicateToken", err)
	}
}

func TestMint_RoyaltyCap(t *testing.T) {
	l := NewSupplyLedger(nil, 1000)
	tok := domain.Token{ID: "tok1", Creator: "sei1creator", RoyaltyPercent: 21}
	if _, err := l.Mint(context.Background(), tok); !errors.Is(err, domain.ErrInvalidRoyalty) {
		t.Errorf("Mint with 21%% royalty = %v; want ErrInvalidRoyalty", err)
	}
}

func TestApply_Bounds(t *testing.T) {
	l := NewSupplyLedger(nil, 10)
	ctx := context.Background()
	if _, err := l.Mint(ctx, domain.Token{ID: "tok1", Creator: "c"}); err != nil {
		t.Fatal(err)
	}

	confirm := func(dir domain.Direction, qty uint64) error {
		tr := &domain.Trade{
			TokenID:   "tok1",
			Direction: dir,
			Quantity:  qty,
			Status:    domain.StatusConfirmed,
		}
		return l.Apply(ctx, tr)
	}

	// Selling with zero supply is invalid.
	if err := confirm(domain.DirectionSell, 1); !errors.Is(err, domain.ErrInsufficientSupply) {
		t.Errorf("sell at supply 0 = %v; want ErrInsufficientSupply", err)
	}

	if err := confirm(domain.DirectionBuy, 10); err != nil {
		t.Fatalf("buy to cap: %v", err)
	}
	if err := confirm(domain.DirectionBuy, 1); !errors.Is(err, domain.ErrInvalidSupply) {
		t.Errorf("buy past cap = %v; want ErrInvalidSupply", err)
	}

	if err := confirm(domain.DirectionSell, 10); err != nil {
		t.Fatalf("sell back to zero: %v", err)
	}
	supply, _ := l.Supply("tok1")
	if supply != 0 {
		t.Errorf("supply after round trip = %d; want 0", supply)
	}
}

func TestApply_RequiresConfirmed(t *testing.T) {
	l := NewSupplyLedger(nil, 10)
	ctx := context.Background()
	if _, err := l.Mint(ctx, domain.Token{ID: "tok1", Creator: "c"}); err != nil {
		t.Fatal(err)
	}

	tr := &domain.Trade{TokenID: "tok1", Direction: domain.DirectionBuy, Quantity: 1, Status: domain.StatusSubmitted}
	if err := l.Apply(ctx, tr); err == nil {
		t.Error("Apply with non-confirmed trade should fail")
	}
}
