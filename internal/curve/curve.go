// Package curve implements the supply -> price bonding curve.
//
// buy price(s)  = initial + floor(sqrt(s^3)) * increment
// sell price(s) = buy price(s-1), sell price(0) = 0
//
// The non-integer exponent (supply^1.5) is computed entirely in the integer
// domain as the square root of the cube, with 256-bit intermediates. The same
// supply therefore prices identically on every platform and can be audited
// against settlement-layer arithmetic; no transcendental function is involved.
package curve

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

// Params shape the deployment-wide curve. Immutable once loaded.
type Params struct {
	InitialPriceMicros int64  `yaml:"initial_price_micros"`
	IncrementMicros    int64  `yaml:"increment_micros"`
	MaxSupply          uint64 `yaml:"max_supply"`
}

// DefaultParams mirror the reference deployment: 0.001 initial, 0.0001 increment.
func DefaultParams() Params {
	return Params{
		InitialPriceMicros: 1000,
		IncrementMicros:    100,
		MaxSupply:          10_000_000,
	}
}

// Model is a pure pricing function. Safe for concurrent use.
type Model struct {
	params    Params
	initial   *uint256.Int
	increment *uint256.Int
}

// NewModel validates params and builds a Model.
func NewModel(p Params) (*Model, error) {
	if p.InitialPriceMicros <= 0 {
		return nil, fmt.Errorf("curve: initial price must be positive, got %d", p.InitialPriceMicros)
	}
	if p.IncrementMicros <= 0 {
		return nil, fmt.Errorf("curve: increment must be positive, got %d", p.IncrementMicros)
	}
	if p.MaxSupply == 0 {
		return nil, fmt.Errorf("curve: max supply must be positive")
	}
	return &Model{
		params:    p,
		initial:   uint256.NewInt(uint64(p.InitialPriceMicros)),
		increment: uint256.NewInt(uint64(p.IncrementMicros)),
	}, nil
}

// Params returns the curve parameters.
func (m *Model) Params() Params {
	return m.params
}

// BuyPrice returns the marginal price of the next token at the given supply.
func (m *Model) BuyPrice(supply uint64) (quant.PriceMicros, error) {
	if supply > m.params.MaxSupply {
		return 0, fmt.Errorf("%w: supply %d exceeds configured maximum %d",
			domain.ErrInvalidSupply, supply, m.params.MaxSupply)
	}

	// floor(sqrt(supply^3)); supply^3 fits in 192 bits.
	s := uint256.NewInt(supply)
	cube := new(uint256.Int).Mul(s, s)
	cube.Mul(cube, s)
	root := new(uint256.Int).Sqrt(cube)

	price := new(uint256.Int).Mul(root, m.increment)
	price.Add(price, m.initial)

	if !price.IsUint64() || price.Uint64() > math.MaxInt64 {
		return 0, fmt.Errorf("%w: price overflow at supply %d", domain.ErrInvalidSupply, supply)
	}
	return quant.PriceMicros(price.Uint64()), nil
}

// SellPrice returns the amount received for selling one token at the given
// supply. The sell price is the buy price at the previous supply level;
// with nothing in circulation there is nothing to sell and the price is zero.
func (m *Model) SellPrice(supply uint64) (quant.PriceMicros, error) {
	if supply == 0 {
		return 0, nil
	}
	if supply > m.params.MaxSupply {
		return 0, fmt.Errorf("%w: supply %d exceeds configured maximum %d",
			domain.ErrInvalidSupply, supply, m.params.MaxSupply)
	}
	return m.BuyPrice(supply - 1)
}
