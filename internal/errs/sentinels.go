// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client layers.
var (
	// ErrUnauthorized indicates a rejected or missing credential (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested record does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates input rejected before any remote call.
	ErrValidation = errors.New("validation failed")

	// ErrBadResponse indicates a response missing fields its type requires.
	ErrBadResponse = errors.New("malformed response")

	// ErrNoSession indicates an operation that needs an authenticated session.
	ErrNoSession = errors.New("no active session")
)
