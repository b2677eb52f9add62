// Package fees computes the protocol fee and creator royalty carved out of a
// trade's gross value at settlement.
package fees

import (
	"fmt"

	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/pkg/quant"
	"github.com/Natsgol/Seilor.fun/pkg/safe"
)

// Split decomposes a gross trade value. Both deductions are independent
// percentages of gross (the royalty is not computed on the fee-reduced
// remainder). For a Sell the net is the amount paid to the seller; for a Buy
// the buyer pays exactly gross and the net is what remains for the creator
// after fee and royalty are carved out.
func Split(gross quant.AmountMicros, platformFeeBps uint32, royaltyPercent uint32) (domain.FeeSplit, error) {
	if gross < 0 {
		return domain.FeeSplit{}, fmt.Errorf("gross value must be non-negative, got %d", gross)
	}
	if platformFeeBps > 10000 {
		return domain.FeeSplit{}, fmt.Errorf("%w: platform fee %d bps", domain.ErrInvalidPercentage, platformFeeBps)
	}
	if royaltyPercent > 100 {
		return domain.FeeSplit{}, fmt.Errorf("%w: royalty %d%%", domain.ErrInvalidPercentage, royaltyPercent)
	}
	if platformFeeBps+royaltyPercent*100 > 10000 {
		return domain.FeeSplit{}, fmt.Errorf("%w: fee %d bps + royalty %d%% exceed 100%%",
			domain.ErrInvalidPercentage, platformFeeBps, royaltyPercent)
	}

	fee := safe.MulBpsFloor(int64(gross), platformFeeBps)
	royalty := safe.MulPctFloor(int64(gross), royaltyPercent)
	net := safe.SafeSub(safe.SafeSub(int64(gross), fee), royalty)

	return domain.FeeSplit{
		ProtocolFeeMicros:    quant.AmountMicros(fee),
		CreatorRoyaltyMicros: quant.AmountMicros(royalty),
		NetMicros:            quant.AmountMicros(net),
	}, nil
}
