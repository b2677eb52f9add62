package domain

import (
	"fmt"

	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

// MaxRoyaltyPercent is the mint-time cap on creator royalties.
const MaxRoyaltyPercent = 20

// Token is a bonding-curve market entry. Supply is owned by the ledger and
// mutated only by confirmed trade settlement.
type Token struct {
	ID             string          `json:"id"`
	Creator        string          `json:"creator"`
	RoyaltyPercent uint32          `json:"royalty_percent"` // immutable after mint
	Supply         uint64          `json:"supply"`
	Name           string          `json:"name"`
	Backstory      string          `json:"backstory"`
	ImageURL       string          `json:"image_url"`
	CreatedUnixM   quant.TimeStamp `json:"created_at_unix"`
}

// Validate checks mint-time constraints.
func (t *Token) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: empty token id", ErrTokenNotFound)
	}
	if t.Creator == "" {
		return fmt.Errorf("token %s: creator account required", t.ID)
	}
	if t.RoyaltyPercent > MaxRoyaltyPercent {
		return fmt.Errorf("%w: %d%% exceeds %d%%", ErrInvalidRoyalty, t.RoyaltyPercent, MaxRoyaltyPercent)
	}
	return nil
}
