package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// status codes; repositories translate driver errors into them.
var (
	// ErrNotFound covers both genuinely absent resources and resources the
	// caller is not allowed to know exist (non-approved events).
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed or semantically invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when the caller is missing credentials,
	// banned, or (for guests) has not identified themselves.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller is authenticated but lacks
	// the required privilege.
	ErrForbidden = errors.New("forbidden")
)
