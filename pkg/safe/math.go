package safe

import (
	"errors"
	"math"
)

// ErrOverflow reports int64 overflow on a checked operation.
var ErrOverflow = errors.New("int64 overflow")

// SafeAdd performs int64 addition and panics on overflow/underflow.
// Use only where overflow means corrupted internal state, never on request input.
func SafeAdd(a, b int64) int64 {
	v, err := Add(a, b)
	if err != nil {
		panic("CORE_SAFE_ADD_OVERFLOW")
	}
	return v
}

// SafeSub performs int64 subtraction and panics on overflow/underflow.
func SafeSub(a, b int64) int64 {
	v, err := Sub(a, b)
	if err != nil {
		panic("CORE_SAFE_SUB_OVERFLOW")
	}
	return v
}

// SafeMul performs int64 multiplication and panics on overflow/underflow.
func SafeMul(a, b int64) int64 {
	v, err := Mul(a, b)
	if err != nil {
		panic("CORE_SAFE_MUL_OVERFLOW")
	}
	return v
}

// SafeDiv performs int64 division and panics on division by zero.
func SafeDiv(a, b int64) int64 {
	if b == 0 {
		panic("CORE_SAFE_DIV_BY_ZERO")
	}
	if a == math.MinInt64 && b == -1 {
		panic("CORE_SAFE_DIV_OVERFLOW")
	}
	return a / b
}

// Add is the checked variant of SafeAdd for request-path math.
func Add(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sub is the checked variant of SafeSub.
func Sub(a, b int64) (int64, error) {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// Mul is the checked variant of SafeMul.
func Mul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 {
		if b > 0 {
			if a > math.MaxInt64/b {
				return 0, ErrOverflow
			}
		} else {
			if b < math.MinInt64/a {
				return 0, ErrOverflow
			}
		}
	} else {
		if b > 0 {
			if a < math.MinInt64/b {
				return 0, ErrOverflow
			}
		} else {
			if a < math.MaxInt64/b {
				return 0, ErrOverflow
			}
		}
	}
	return a * b, nil
}

// MulBpsFloor returns floor(amount * bps / 10000) for non-negative amounts.
// bps must be <= 10000.
func MulBpsFloor(amount int64, bps uint32) int64 {
	return mulFracFloor(amount, int64(bps), 10000)
}

// MulPctFloor returns floor(amount * pct / 100) for non-negative amounts.
// pct must be <= 100.
func MulPctFloor(amount int64, pct uint32) int64 {
	return mulFracFloor(amount, int64(pct), 100)
}

// mulFracFloor computes floor(amount * num / den) for 0 <= num <= den.
// Splitting amount into quotient and remainder keeps every intermediate
// at or below amount itself, so the product cannot overflow.
func mulFracFloor(amount, num, den int64) int64 {
	if amount < 0 || num < 0 || num > den {
		panic("CORE_MUL_FRAC_RANGE")
	}
	q := amount / den
	r := amount % den
	return q*num + r*num/den
}
