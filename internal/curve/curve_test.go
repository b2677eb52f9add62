package curve

import (
	"errors"
	"testing"

	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

func mustModel(t testing.TB, p Params) *Model {
	t.Helper()
	m, err := NewModel(p)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestBuyPrice_ReferenceScenario(t *testing.T) {
	// initial 0.001, increment 0.0001
	m := mustModel(t, DefaultParams())

	tests := []struct {
		supply uint64
		want   quant.PriceMicros
	}{
		{0, 1000}, // 0.001
		{1, 1100}, // 0.001 + 1^1.5 * 0.0001 = 0.0011
		{4, 1800}, // 4^1.5 = 8
		{9, 3700}, // 9^1.5 = 27
		{100, 101000}, // 100^1.5 = 1000
	}

	for _, tt := range tests {
		got, err := m.BuyPrice(tt.supply)
		if err != nil {
			t.Fatalf("BuyPrice(%d): %v", tt.supply, err)
		}
		if got != tt.want {
			t.Errorf("BuyPrice(%d) = %d; want %d", tt.supply, got, tt.want)
		}
	}
}

func TestBuyPrice_StrictMonotonicity(t *testing.T) {
	m := mustModel(t, DefaultParams())

	prev, err := m.BuyPrice(0)
	if err != nil {
		t.Fatal(err)
	}
	for s := uint64(1); s <= 5000; s++ {
		p, err := m.BuyPrice(s)
		if err != nil {
			t.Fatalf("BuyPrice(%d): %v", s, err)
		}
		if p <= prev {
			t.Fatalf("BuyPrice(%d) = %d not greater than BuyPrice(%d) = %d", s, p, s-1, prev)
		}
		prev = p
	}
}

func TestSellPrice_AdjacencySymmetry(t *testing.T) {
	m := mustModel(t, DefaultParams())

	for s := uint64(1); s <= 2000; s++ {
		sell, err := m.SellPrice(s)
		if err != nil {
			t.Fatalf("SellPrice(%d): %v", s, err)
		}
		buy, err := m.BuyPrice(s - 1)
		if err != nil {
			t.Fatalf("BuyPrice(%d): %v", s-1, err)
		}
		if sell != quant.PriceMicros(buy) {
			t.Fatalf("SellPrice(%d) = %d; want BuyPrice(%d) = %d", s, sell, s-1, buy)
		}
	}
}

func TestSellPrice_ZeroSupply(t *testing.T) {
	m := mustModel(t, DefaultParams())
	p, err := m.SellPrice(0)
	if err != nil {
		t.Fatalf("SellPrice(0): %v", err)
	}
	if p != 0 {
		t.Errorf("SellPrice(0) = %d; want 0", p)
	}
}

func TestBuyPrice_SupplyAboveMax(t *testing.T) {
	m := mustModel(t, Params{InitialPriceMicros: 1000, IncrementMicros: 100, MaxSupply: 10})

	if _, err := m.BuyPrice(11); !errors.Is(err, domain.ErrInvalidSupply) {
		t.Errorf("BuyPrice(11) = %v; want ErrInvalidSupply", err)
	}
	if _, err := m.SellPrice(11); !errors.Is(err, domain.ErrInvalidSupply) {
		t.Errorf("SellPrice(11) = %v; want ErrInvalidSupply", err)
	}
	if _, err := m.BuyPrice(10); err != nil {
		t.Errorf("BuyPrice(10) at the cap: %v", err)
	}
}

func TestBuyPrice_OverflowGuard(t *testing.T) {
	// Large increment with maximal supply pushes the price past int64.
	m := mustModel(t, Params{
		InitialPriceMicros: 1000,
		IncrementMicros:    1 << 40,
		MaxSupply:          1 << 40,
	})
	if _, err := m.BuyPrice(1 << 40); !errors.Is(err, domain.ErrInvalidSupply) {
		t.Errorf("overflowing price gave %v; want ErrInvalidSupply", err)
	}
}

func TestNewModel_RejectsBadParams(t *testing.T) {
	bad := []Params{
		{InitialPriceMicros: 0, IncrementMicros: 100, MaxSupply: 10},
		{InitialPriceMicros: -1, IncrementMicros: 100, MaxSupply: 10},
		{InitialPriceMicros: 1000, IncrementMicros: 0, MaxSupply: 10},
		{InitialPriceMicros: 1000, IncrementMicros: 100, MaxSupply: 0},
	}
	for _, p := range bad {
		if _, err := NewModel(p); err == nil {
			t.Errorf("NewModel(%+v) should fail", p)
		}
	}
}
