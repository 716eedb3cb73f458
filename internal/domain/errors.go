package domain

import "errors"

// Sentinel errors shared across services and handlers. Handlers map these
// onto HTTP status codes; authorization failures are never downgraded to
// not-found or bad-input.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
