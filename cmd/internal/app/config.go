package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// RedisAddr switches the rate limiter onto a shared Redis counter store.
	// Empty means the in-process store, which is correct for a single replica.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TrustProxy enables forwarded-header client identification for rate
	// limiting. Only set behind a proxy that overwrites those headers.
	TrustProxy bool

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// Security policy:
	// If true, SHOPGATE_CODE_HMAC_KEY MUST be set (>= 32 bytes) and
	// verification-code hashing must be HMAC-based.
	RequireCodeHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("SHOPGATE_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("SHOPGATE_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("SHOPGATE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("SHOPGATE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("SHOPGATE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("SHOPGATE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("SHOPGATE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("SHOPGATE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("SHOPGATE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("SHOPGATE_DB_MIN_CONNS", 0),

		RedisAddr:     EnvString("SHOPGATE_REDIS_ADDR", ""),
		RedisPassword: EnvString("SHOPGATE_REDIS_PASSWORD", ""),
		RedisDB:       EnvInt("SHOPGATE_REDIS_DB", 0),

		TrustProxy: EnvBool("SHOPGATE_TRUST_PROXY", false),

		ReadinessRequireDB: EnvBool("SHOPGATE_READINESS_REQUIRE_DB", false),

		RequireCodeHMAC: EnvBool("SHOPGATE_REQUIRE_CODE_HMAC", false),
	}
}
