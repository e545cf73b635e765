package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// admitScript performs the fixed-window check-and-increment atomically on the
// Redis side. A rejected request reads the counter but never increments it.
//
// KEYS[1] counter key
// ARGV[1] max requests
// ARGV[2] window in milliseconds
// Returns {allowed(0|1), count, pttl_ms}.
var admitScript = redis.NewScript(`
local max = tonumber(ARGV[1])
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= max then
  return {0, current, redis.call('PTTL', KEYS[1])}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], tonumber(ARGV[2]))
end
return {1, current, redis.call('PTTL', KEYS[1])}
`)

// RedisStore is the multi-process CounterStore. Counters live in Redis with
// native key expiry, so several shopgate instances share one budget per
// (client, category).
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// RedisOption configures the store.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the default "shopgate:ratelimit" key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		prefix = strings.Trim(strings.TrimSpace(prefix), ":")
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore constructs a RedisStore over an existing client.
// The client is owned by the caller.
func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "shopgate:ratelimit",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func (s *RedisStore) key(clientID string, cat Category) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, cat, clientID)
}

// Admit implements CounterStore via a single server-side script execution.
func (s *RedisStore) Admit(ctx context.Context, clientID string, cat Category, rule Rule, now time.Time) (Decision, error) {
	if s == nil || s.rdb == nil {
		return Decision{}, fmt.Errorf("ratelimit: nil redis client")
	}

	res, err := admitScript.Run(ctx, s.rdb,
		[]string{s.key(clientID, cat)},
		rule.Max, rule.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis admit: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: redis admit: unexpected reply %v", res)
	}

	allowed := res[0] == 1
	count := int(res[1])
	ttl := time.Duration(res[2]) * time.Millisecond
	if ttl <= 0 {
		ttl = rule.Window
	}
	resetAt := now.Add(ttl)

	if !allowed {
		return Decision{
			Allowed:    false,
			Limit:      rule.Max,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfterCeil(resetAt, now),
		}, nil
	}

	remaining := rule.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   true,
		Limit:     rule.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Sweep is a no-op: Redis expires counter keys natively.
func (s *RedisStore) Sweep(time.Time) {}
