package app

import (
	"errors"

	"shopgate/cmd/security/token"
)

// ValidateSecurityConfig enforces the deployment security policy at startup.
// Fail-fast is intentional: silently falling back to weaker hashing in
// production is unacceptable.
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireCodeHMAC {
		return nil
	}

	// Minimum 32 bytes for an HMAC-SHA256 secret, measured as raw bytes.
	if _, err := token.HMACKeyFromEnv(32); err != nil {
		switch {
		case errors.Is(err, token.ErrHMACKeyMissing):
			return errors.New("security policy: SHOPGATE_REQUIRE_CODE_HMAC=true but SHOPGATE_CODE_HMAC_KEY is missing")
		case errors.Is(err, token.ErrHMACKeyTooShort):
			return errors.New("security policy: SHOPGATE_REQUIRE_CODE_HMAC=true but SHOPGATE_CODE_HMAC_KEY is too short (min 32 bytes)")
		default:
			return err
		}
	}

	// Hard assertion: code hashing must actually be in HMAC mode in this runtime.
	if !token.HMACEnabled() {
		return errors.New("security policy: SHOPGATE_REQUIRE_CODE_HMAC=true but code hasher is not in HMAC mode")
	}

	return nil
}
