package engine

import (
	"fmt"
	"math"

	"github.com/Natsgol/Seilor.fun/internal/curve"
	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/pkg/quant"
	"github.com/Natsgol/Seilor.fun/pkg/safe"
)

// grossValue sums the marginal price of every unit traversed by the trade.
// Buying N tokens prices each incremental unit at its own supply level, so a
// batch of N costs exactly the same as N sequential single-token trades.
// The caller guarantees qty >= 1 and, for sells, qty <= supply.
func grossValue(m *curve.Model, dir domain.Direction, supply, qty uint64) (quant.AmountMicros, error) {
	var gross int64
	for i := uint64(0); i < qty; i++ {
		var (
			p   quant.PriceMicros
			err error
		)
		switch dir {
		case domain.DirectionBuy:
			p, err = m.BuyPrice(supply + i)
		case domain.DirectionSell:
			p, err = m.SellPrice(supply - i)
		default:
			return 0, fmt.Errorf("unknown direction %d", dir)
		}
		if err != nil {
			return 0, err
		}
		gross, err = safe.Add(gross, int64(p))
		if err != nil {
			return 0, fmt.Errorf("%w: gross value overflow", domain.ErrInvalidSupply)
		}
	}
	return quant.AmountMicros(gross), nil
}

// grossBound applies the slippage tolerance to a quoted gross value.
// Buy: the worst acceptable execution is tolerance above the quote.
// Sell: tolerance below. Zero tolerance pins the bound to the quote itself.
func grossBound(gross quant.AmountMicros, dir domain.Direction, slippageBps uint32) quant.AmountMicros {
	slack := safe.MulBpsFloor(int64(gross), slippageBps)
	if dir == domain.DirectionBuy {
		v, err := safe.Add(int64(gross), slack)
		if err != nil {
			// A saturated bound only loosens a comparison that could never
			// have been exceeded within int64 arithmetic anyway.
			return quant.AmountMicros(math.MaxInt64)
		}
		return quant.AmountMicros(v)
	}
	return gross - quant.AmountMicros(slack)
}

// withinBound reports whether an execution gross respects the quote's bound.
func withinBound(exec, bound quant.AmountMicros, dir domain.Direction) bool {
	if dir == domain.DirectionBuy {
		return exec <= bound
	}
	return exec >= bound
}
