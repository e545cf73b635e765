package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config defines the admission budget per category and the sweep cadence.
//
// Every value is env-overridable so production can tune limits without code
// changes. Invalid env values fall back to defaults rather than failing boot;
// a misconfigured limit must never take the storefront down.
type Config struct {
	SweepEvery time.Duration
	Rules      map[Category]Rule
}

// DefaultConfig returns the storefront's baseline budgets.
func DefaultConfig() Config {
	return Config{
		SweepEvery: 60 * time.Second,
		Rules: map[Category]Rule{
			CategoryGeneral:       {Window: time.Minute, Max: 100},
			CategoryLogin:         {Window: 15 * time.Minute, Max: 5},
			CategoryRegister:      {Window: time.Hour, Max: 3},
			CategoryPasswordReset: {Window: time.Hour, Max: 3},
			CategoryUpload:        {Window: time.Minute, Max: 10},
			CategoryAdmin:         {Window: time.Minute, Max: 30},
		},
	}
}

// LoadConfigFromEnv loads limiter configuration from environment variables.
//
// Env surface (per category CAT in GENERAL, LOGIN, REGISTER, PASSWORD_RESET,
// UPLOAD, ADMIN):
//   - SHOPGATE_RATE_<CAT>_MAX
//   - SHOPGATE_RATE_<CAT>_WINDOW (Go duration)
//   - SHOPGATE_RATE_SWEEP_EVERY
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("SHOPGATE_RATE_SWEEP_EVERY")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepEvery = d
		}
	}

	for cat, rule := range cfg.Rules {
		envCat := strings.ToUpper(string(cat))

		if v := strings.TrimSpace(os.Getenv("SHOPGATE_RATE_" + envCat + "_MAX")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				rule.Max = n
			}
		}
		if v := strings.TrimSpace(os.Getenv("SHOPGATE_RATE_" + envCat + "_WINDOW")); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				rule.Window = d
			}
		}
		cfg.Rules[cat] = rule
	}

	return cfg
}

func (c Config) effectiveRules() map[Category]Rule {
	defaults := DefaultConfig().Rules
	rules := make(map[Category]Rule, len(defaults))
	for cat, def := range defaults {
		rules[cat] = def
	}
	for cat, r := range c.Rules {
		if r.Max > 0 && r.Window > 0 {
			rules[cat] = r
		}
	}
	return rules
}

func (c Config) effectiveSweepEvery() time.Duration {
	if c.SweepEvery > 0 {
		return c.SweepEvery
	}
	return DefaultConfig().SweepEvery
}
