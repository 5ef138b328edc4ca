package registry

import "errors"

// Registry errors. Every failure leaves all persisted state exactly as
// it was before the call; retry policy belongs to the caller.
var (
	ErrInsufficientBond = errors.New("bond below minimum")
	ErrNotFound         = errors.New("claim not found")
	ErrWindowClosed     = errors.New("challenge window closed")
	ErrAlreadyClosed    = errors.New("claim already closed")
	ErrTransferFailed   = errors.New("fund transfer failed")
	ErrTooEarly         = errors.New("deadline not reached")
	ErrAlreadyFinalized = errors.New("claim already finalized")
	ErrNotFinalized     = errors.New("claim not finalized")
	ErrForfeited        = errors.New("bond forfeited or already paid out")
	ErrUnauthorized     = errors.New("caller is not the submitter")
	ErrUnknownVerifier  = errors.New("verifier not registered")
)
