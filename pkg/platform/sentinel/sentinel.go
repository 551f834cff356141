package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: session does not exist in the store
//   - ErrExpired: session outlived its TTL
//   - ErrInvalidState: session is in the wrong lifecycle state for the operation
//   - ErrUnavailable: backing store temporarily unavailable
//
// For validation errors (bad input, missing answers), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
