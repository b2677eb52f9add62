// curvetool prints a bonding-curve price table for a parameter set, so curve
// changes can be eyeballed before they reach a config file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/Natsgol/Seilor.fun/internal/curve"
)

func main() {
	initial := flag.Int64("initial", 1000, "initial price in micros")
	increment := flag.Int64("increment", 100, "price increment in micros")
	maxSupply := flag.Uint64("max-supply", 10_000_000, "supply cap")
	upto := flag.Uint64("upto", 100, "highest supply to print")
	step := flag.Uint64("step", 10, "supply step between rows")
	flag.Parse()

	model, err := curve.NewModel(curve.Params{
		InitialPriceMicros: *initial,
		IncrementMicros:    *increment,
		MaxSupply:          *maxSupply,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid params: %v\n", err)
		os.Exit(1)
	}
	if *step == 0 {
		fmt.Fprintln(os.Stderr, "step must be positive")
		os.Exit(1)
	}

	fmt.Println("=== Seilor Bonding Curve Table ===")
	fmt.Printf("initial=%s increment=%s max_supply=%d\n\n",
		decimal.New(*initial, -6).StringFixed(6),
		decimal.New(*increment, -6).StringFixed(6),
		*maxSupply)
	fmt.Printf("%12s %16s %16s\n", "SUPPLY", "BUY", "SELL")

	for s := uint64(0); ; {
		buy, err := model.BuyPrice(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "buy price at %d: %v\n", s, err)
			os.Exit(1)
		}
		sell, err := model.SellPrice(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sell price at %d: %v\n", s, err)
			os.Exit(1)
		}
		fmt.Printf("%12d %16s %16s\n", s, buy.String(), sell.String())

		next := s + *step
		if next < s || next > *upto {
			break
		}
		s = next
	}

	fmt.Println("\n✅ All prices computed in int64 micros, no float64 involved.")
}
