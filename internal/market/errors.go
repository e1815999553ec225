package market

import "errors"

var (
	// ErrInvalidState: a local precondition failed before any ledger
	// submission. Safe to report as a plain rejection.
	ErrInvalidState = errors.New("invalid state")

	// ErrPaymentVerification: the claimed payment transaction does not
	// exist or does not match the expected sender/amount. Detected before
	// any ledger submission.
	ErrPaymentVerification = errors.New("payment verification failed")
)
