package domain

import (
	"fmt"
	"strings"

	"github.com/Natsgol/Seilor.fun/pkg/quant"
)

// Direction is the trade side.
type Direction uint8

const (
	DirectionBuy Direction = iota + 1
	DirectionSell
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "BUY"
	case DirectionSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection accepts the wire form of a Direction, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case "BUY":
		return DirectionBuy, nil
	case "SELL":
		return DirectionSell, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Quote is an executable price offer, valid only against the supply snapshot
// it was computed from. Immutable; consumed exactly once by the executor.
type Quote struct {
	ID             string    `json:"id"`
	TokenID        string    `json:"token_id"`
	Trader         string    `json:"trader"`
	Direction      Direction `json:"direction"`
	Quantity       uint64    `json:"quantity"`
	SupplySnapshot uint64    `json:"supply_snapshot"`

	// UnitPriceMicros is the floor-divided average price, for display only.
	// Slippage is enforced on the gross bound, not on this rounded value.
	UnitPriceMicros  quant.PriceMicros  `json:"unit_price"`
	GrossMicros      quant.AmountMicros `json:"gross"`
	BoundGrossMicros quant.AmountMicros `json:"gross_bound"`
	SlippageBps      uint32             `json:"slippage_bps"`

	CreatedUnixM quant.TimeStamp `json:"created_at_unix"`
}
