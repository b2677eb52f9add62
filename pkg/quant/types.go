package quant

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceMicros represents a unit price multiplied by 1,000,000 (10^6).
// E.g., 0.001 SEI = 1,000 PriceMicros.
type PriceMicros int64

// AmountMicros represents a settled monetary value in the same 10^6 scale.
// Gross trade values, fees, royalties, and net proceeds are all AmountMicros.
type AmountMicros int64

// TimeStamp represents Unix Microseconds.
type TimeStamp int64

const (
	// PriceScale is the fixed-point scale shared by PriceMicros and AmountMicros.
	PriceScale = 1000000

	priceDecimals = 6
)

// ErrBadNumber reports a string that is not a valid fixed-point number.
var ErrBadNumber = errors.New("malformed fixed-point number")

// Now returns the current time as a TimeStamp.
func Now() TimeStamp {
	return TimeStamp(time.Now().UnixMicro())
}

func (p PriceMicros) String() string {
	return formatMicros(int64(p))
}

func (a AmountMicros) String() string {
	return formatMicros(int64(a))
}

// Decimal returns the price as an exact decimal value.
func (p PriceMicros) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -priceDecimals)
}

// Decimal returns the amount as an exact decimal value.
func (a AmountMicros) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -priceDecimals)
}

// formatMicros renders a micros value with 6 decimal places.
// Rule #1: No Float. decimal keeps the rendering exact.
func formatMicros(v int64) string {
	return decimal.New(v, -priceDecimals).StringFixed(priceDecimals)
}

// ParsePriceMicros converts a numeric string to PriceMicros without using float64.
func ParsePriceMicros(s string) (PriceMicros, error) {
	v, err := parseFixedPoint(s, priceDecimals)
	return PriceMicros(v), err
}

// ParseAmountMicros converts a numeric string to AmountMicros without using float64.
func ParseAmountMicros(s string) (AmountMicros, error) {
	v, err := parseFixedPoint(s, priceDecimals)
	return AmountMicros(v), err
}

// parseFixedPoint parses a numeric string into an int64 with the given precision.
// E.g., parseFixedPoint("1.23", 6) -> 1,230,000. Excess fraction digits are truncated.
func parseFixedPoint(s string, precision int) (int64, error) {
	if s == "" {
		return 0, ErrBadNumber
	}

	intStr, fracStr := s, ""
	if dot := strings.IndexByte(s, '.'); dot != -1 {
		intStr, fracStr = s[:dot], s[dot+1:]
	}

	neg := strings.HasPrefix(intStr, "-")

	intPart, err := strconv.ParseInt(intStr, 10, 64)
	if err != nil {
		return 0, ErrBadNumber
	}
	scale := int64(1)
	for i := 0; i < precision; i++ {
		scale *= 10
	}
	if intPart > math.MaxInt64/scale || intPart < math.MinInt64/scale {
		return 0, ErrBadNumber
	}
	intPart *= scale

	if fracStr == "" {
		return intPart, nil
	}
	if len(fracStr) > precision {
		fracStr = fracStr[:precision]
	}
	fracPart, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil || fracPart < 0 {
		return 0, ErrBadNumber
	}
	for i := len(fracStr); i < precision; i++ {
		fracPart *= 10
	}

	if neg {
		if intPart < math.MinInt64+fracPart {
			return 0, ErrBadNumber
		}
		return intPart - fracPart, nil
	}
	if intPart > math.MaxInt64-fracPart {
		return 0, ErrBadNumber
	}
	return intPart + fracPart, nil
}
