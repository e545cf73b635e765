package token

import "errors"

// Public, stable errors for callers.
var (
	ErrHMACKeyMissing  = errors.New("code HMAC key missing")
	ErrHMACKeyTooShort = errors.New("code HMAC key too short")
)
