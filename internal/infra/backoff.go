package infra

import (
	"time"
)

const (
	// Reconnect pacing for the settlement stream
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// CalculateBackoff returns the exponential backoff duration for a retry
// count: baseDelay * 2^retryCount, capped at maxDelay. Negative counts get
// the base delay.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		return baseDelay
	}

	// 2^31 seconds is already far past the cap; short-circuit before the
	// shift can overflow.
	if retryCount > 30 {
		return maxDelay
	}

	backoff := baseDelay * time.Duration(1<<retryCount)
	if backoff > maxDelay {
		return maxDelay
	}
	return backoff
}
