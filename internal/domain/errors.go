package domain

import "errors"

// Error taxonomy of the trading core. Local validation errors are detected
// synchronously and never reach the settlement layer; settlement errors carry
// the collaborator's verdict back to the caller.
var (
	ErrInvalidSupply      = errors.New("invalid supply")
	ErrQuantityOutOfRange = errors.New("quantity out of range")
	ErrInsufficientSupply = errors.New("insufficient supply")
	ErrInvalidPercentage  = errors.New("invalid percentage")
	ErrSlippageExceeded   = errors.New("slippage exceeded")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrSettlementRejected = errors.New("settlement rejected")
	ErrSettlementTimeout  = errors.New("settlement timeout")
	ErrTokenNotFound      = errors.New("token not found")
	ErrDuplicateToken     = errors.New("token already exists")
	ErrInvalidRoyalty     = errors.New("royalty percent out of range")
	ErrQuoteConsumed      = errors.New("quote already consumed")
)

// rejectionErrs are the causes a non-confirmed terminal Trade may carry.
var rejectionErrs = []error{
	ErrSlippageExceeded,
	ErrInsufficientFunds,
	ErrSettlementRejected,
	ErrSettlementTimeout,
	ErrInsufficientSupply,
	ErrInvalidSupply,
	ErrInvalidPercentage,
}

// RejectionReason returns the storable reason text for an error: the matching
// sentinel's message when one is wrapped, the full message otherwise.
func RejectionReason(err error) string {
	for _, sentinel := range rejectionErrs {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// ReasonError maps a stored rejection reason back to its sentinel error,
// so replayed terminal results surface the same error kind as the original
// execution. Unknown reasons map to ErrSettlementRejected.
func ReasonError(reason string) error {
	if reason == "" {
		return nil
	}
	for _, err := range rejectionErrs {
		if err.Error() == reason {
			return err
		}
	}
	return ErrSettlementRejected
}
