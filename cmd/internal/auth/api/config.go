package authapi

import (
	"os"
	"strconv"
	"strings"
)

// Config controls auth API behavior and security defaults.
type Config struct {
	// TrustProxy enables forwarded-header client identification. Only set
	// this when the process sits behind a proxy that overwrites those headers.
	TrustProxy bool

	// MaxBodyBytes bounds request bodies on auth endpoints.
	MaxBodyBytes int64

	// RequireEmailVerified refuses login for accounts that never confirmed
	// their address.
	RequireEmailVerified bool
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		TrustProxy:           envBool("SHOPGATE_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:         envInt64("SHOPGATE_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
		RequireEmailVerified: envBool("SHOPGATE_AUTH_REQUIRE_EMAIL_VERIFIED", true),
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return cfg
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
