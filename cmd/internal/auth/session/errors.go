package session

import "errors"

var (
	// ErrInvalidToken is returned for any credential that fails verification:
	// malformed, tampered, or expired. Callers must not be able to tell which.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnauthenticated is returned when a request cannot be resolved to an
	// active user, regardless of cause (no cookie, bad token, user deleted or
	// deactivated, store unavailable). Fail closed, one error.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
