package domain

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrBadToken          = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token has expired")
	ErrInvalidState      = errors.New("transition not permitted in current state")
	ErrSequenceExhausted = errors.New("sequence allocation retries exhausted")
	ErrChargeCancelled   = errors.New("charge is cancelled")
	ErrTransportTimeout  = errors.New("transport call timed out")
	ErrTransportRefused  = errors.New("transport refused the message")
)
