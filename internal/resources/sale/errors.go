// Package sale holds the failure taxonomy shared by the sale components. Every failure is local and
// synchronous, nothing is retried internally.
package sale

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized caller")
	ErrPaused              = errors.New("paused")
	ErrWrongPhase          = errors.New("operation is not allowed in the current sale phase")
	ErrAlreadyStarted      = errors.New("sale already started")
	ErrSoldOut             = errors.New("phase cap is exhausted")
	ErrTransferLocked      = errors.New("token transfers are locked until the ico ends")
	ErrNothingToExtract    = errors.New("nothing to extract")
	ErrInvalidConfig       = errors.New("invalid config")
	ErrRatesNotSet         = errors.New("rates are not set")
	ErrRatesAlreadySet     = errors.New("rates are already set")
	ErrZeroValue           = errors.New("zero value")
	ErrAlreadyBound        = errors.New("crowdsale address already set")
	ErrNotBound            = errors.New("crowdsale address is not set")
	ErrInsufficientBalance = errors.New("insufficient token balance")
)
