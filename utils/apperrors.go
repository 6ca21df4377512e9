package utils

import "errors"

// Domain error sentinels. Services wrap these with context via
// fmt.Errorf("...: %w", ...); controllers map them to HTTP statuses.
var (
	// ErrValidation: missing/empty required field, dish outside the allowed range.
	ErrValidation = errors.New("validation failed")
	// ErrAuth: missing or invalid credential (guest token, login).
	ErrAuth = errors.New("unauthorized")
	// ErrForbidden: a non-host attempting a host-only action.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound: unknown party/dish/guest/share code.
	ErrNotFound = errors.New("not found")
	// ErrLocked: mutating a locked party.
	ErrLocked = errors.New("party is locked")
)
