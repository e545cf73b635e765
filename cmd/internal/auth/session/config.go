package session

import (
	"os"
	"time"
)

// Config defines all runtime configuration for the session subsystem.
//
// It controls credential lifetime, clock skew tolerance, cookie transport
// attributes, the user-lookup timeout, and the PASETO v4 signing key.
//
// This struct is intentionally explicit and environment-driven so production
// deployments can tune security parameters without code changes.
type Config struct {
	// Issuer is the value set in the "iss" claim of credentials.
	Issuer string

	// CredentialTTL is the fixed credential lifetime. There is no refresh
	// mechanism; expiry means re-login.
	CredentialTTL time.Duration

	// ClockSkew is the allowed time skew during credential validation.
	ClockSkew time.Duration

	// ResolveTimeout bounds the user-record lookup performed on every
	// resolution. On timeout the request degrades to unauthenticated
	// rather than hanging.
	ResolveTimeout time.Duration

	// CookieSecure marks the auth cookie Secure. Always true in production;
	// only disabled for plain-HTTP local development.
	CookieSecure bool

	// PasetoV4SecretKeyHex is the hex-encoded Ed25519 secret key used to
	// sign PASETO v4.public credentials. Required; there is no default.
	PasetoV4SecretKeyHex string
}

// DefaultConfig returns defaults suitable for development.
// The signing key has no default and must always come from the environment.
func DefaultConfig() Config {
	return Config{
		Issuer:         "shopgate",
		CredentialTTL:  7 * 24 * time.Hour,
		ClockSkew:      30 * time.Second,
		ResolveTimeout: 3 * time.Second,
		CookieSecure:   true,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - SHOPGATE_PASETO_V4_SECRET_KEY_HEX
//
// Optional (durations must be valid Go duration strings):
//   - SHOPGATE_AUTH_ISSUER
//   - SHOPGATE_AUTH_CREDENTIAL_TTL
//   - SHOPGATE_AUTH_CLOCK_SKEW
//   - SHOPGATE_AUTH_RESOLVE_TIMEOUT
//   - SHOPGATE_AUTH_COOKIE_SECURE ("false" only for local development)
//
// Returns ErrConfig if configuration is invalid. A missing signing key is a
// hard startup failure by design: silently falling back to a guessable
// default secret would be worse than refusing to boot.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("SHOPGATE_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("SHOPGATE_AUTH_CREDENTIAL_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.CredentialTTL = d
	}

	if v := os.Getenv("SHOPGATE_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	if v := os.Getenv("SHOPGATE_AUTH_RESOLVE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.ResolveTimeout = d
	}

	if v := os.Getenv("SHOPGATE_AUTH_COOKIE_SECURE"); v == "false" {
		cfg.CookieSecure = false
	}

	cfg.PasetoV4SecretKeyHex = os.Getenv("SHOPGATE_PASETO_V4_SECRET_KEY_HEX")
	if cfg.PasetoV4SecretKeyHex == "" {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
