package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counterKey struct {
	client string
	cat    Category
}

type counter struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

func (c *counter) expired(now time.Time) bool {
	return now.Sub(c.windowStart) > c.window
}

// MemoryStore is the single-process CounterStore: a mutex-guarded map of
// fixed-window counters. The check-and-increment in Admit is one atomic step
// under the mutex, and Sweep runs under the same mutex so it never races
// request handling.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[counterKey]*counter
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[counterKey]*counter)}
}

// Admit implements CounterStore. It never returns an error.
func (s *MemoryStore) Admit(_ context.Context, clientID string, cat Category, rule Rule, now time.Time) (Decision, error) {
	key := counterKey{client: clientID, cat: cat}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || c.expired(now) {
		// Lazy creation and window reset share the same outcome: a fresh
		// window with one request consumed.
		s.counters[key] = &counter{count: 1, windowStart: now, window: rule.Window}
		return Decision{
			Allowed:   true,
			Limit:     rule.Max,
			Remaining: rule.Max - 1,
			ResetAt:   now.Add(rule.Window),
		}, nil
	}

	resetAt := c.windowStart.Add(c.window)

	if c.count >= rule.Max {
		// Reject without incrementing.
		return Decision{
			Allowed:    false,
			Limit:      rule.Max,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfterCeil(resetAt, now),
		}, nil
	}

	c.count++
	return Decision{
		Allowed:   true,
		Limit:     rule.Max,
		Remaining: rule.Max - c.count,
		ResetAt:   resetAt,
	}, nil
}

// Sweep deletes every counter whose window has expired, bounding memory.
// Active entries are left untouched.
func (s *MemoryStore) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, c := range s.counters {
		if c.expired(now) {
			delete(s.counters, k)
		}
	}
}

// Len reports the number of live counters. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
