package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Category partitions limiter state per endpoint class.
// Each category owns its own (window, max) rule.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryLogin         Category = "login"
	CategoryRegister      Category = "register"
	CategoryPasswordReset Category = "password_reset"
	CategoryUpload        Category = "upload"
	CategoryAdmin         Category = "admin"
)

// Rule is the per-category admission budget.
type Rule struct {
	Window time.Duration
	Max    int
}

// Decision is the structured outcome of an admission check.
//
// RetryAfter is only set on rejection and is already rounded up to whole
// seconds for direct use in a Retry-After header.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// CounterStore is the injectable counter backend.
//
// Contract:
//   - Admit executes the check-and-increment atomically with respect to
//     concurrent calls for the same (clientID, category).
//   - A rejection must not advance the counter.
//   - Sweep deletes counters whose window has expired; stores with native
//     key expiry may make it a no-op.
type CounterStore interface {
	Admit(ctx context.Context, clientID string, cat Category, rule Rule, now time.Time) (Decision, error)
	Sweep(now time.Time)
}

// Metrics receives admission outcomes. Implementations must be safe for
// concurrent use.
type Metrics interface {
	RequestAdmitted(cat Category)
	RequestRejected(cat Category)
}

type nopMetrics struct{}

func (nopMetrics) RequestAdmitted(Category) {}
func (nopMetrics) RequestRejected(Category) {}

// Limiter gates requests per (client, category) against configured rules.
//
// It is an explicitly constructed component with a Start/Stop lifecycle owned
// by the composition root; there is no package-level singleton.
type Limiter struct {
	log     *slog.Logger
	store   CounterStore
	rules   map[Category]Rule
	metrics Metrics

	sweepEvery time.Duration

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// LimiterOption configures optional Limiter dependencies.
type LimiterOption func(*Limiter)

// WithMetrics attaches an admission metrics sink.
func WithMetrics(m Metrics) LimiterOption {
	return func(l *Limiter) {
		if l == nil || m == nil {
			return
		}
		l.metrics = m
	}
}

// New constructs a Limiter over the given store and rules.
func New(log *slog.Logger, store CounterStore, cfg Config, opts ...LimiterOption) *Limiter {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		store = NewMemoryStore()
	}

	l := &Limiter{
		log:        log,
		store:      store,
		rules:      cfg.effectiveRules(),
		metrics:    nopMetrics{},
		sweepEvery: cfg.effectiveSweepEvery(),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Rule returns the effective rule for a category.
func (l *Limiter) Rule(cat Category) Rule {
	if r, ok := l.rules[cat]; ok {
		return r
	}
	return l.rules[CategoryGeneral]
}

// Admit checks and consumes one request slot for (clientID, cat).
//
// Exhaustion is a value, not an error. If the counter store itself fails
// (e.g. Redis unreachable) the request is admitted and the failure logged:
// availability wins here because authentication still gates sensitive routes.
func (l *Limiter) Admit(ctx context.Context, clientID string, cat Category) Decision {
	now := time.Now().UTC()
	rule := l.Rule(cat)

	dec, err := l.store.Admit(ctx, clientID, cat, rule, now)
	if err != nil {
		l.log.Warn("ratelimit.store.fail", "category", string(cat), "err", err)
		return Decision{
			Allowed:   true,
			Limit:     rule.Max,
			Remaining: rule.Max - 1,
			ResetAt:   now.Add(rule.Window),
		}
	}

	if dec.Allowed {
		l.metrics.RequestAdmitted(cat)
	} else {
		l.metrics.RequestRejected(cat)
	}
	return dec
}

// Start launches the periodic sweep. It returns immediately; the sweep stops
// when ctx is cancelled or Stop is called.
func (l *Limiter) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.started = true
	go l.sweepLoop(ctx)
}

// Stop terminates the sweep goroutine and waits for it to exit.
// Safe to call multiple times and before Start.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })

	l.mu.Lock()
	started := l.started
	l.mu.Unlock()
	if started {
		<-l.done
	}
}

func (l *Limiter) sweepLoop(ctx context.Context) {
	defer close(l.done)

	t := time.NewTicker(l.sweepEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case <-t.C:
			l.store.Sweep(time.Now().UTC())
		}
	}
}

// retryAfterCeil rounds the time until reset up to whole seconds, minimum 1s.
func retryAfterCeil(resetAt, now time.Time) time.Duration {
	d := resetAt.Sub(now)
	if d <= 0 {
		return time.Second
	}
	secs := (d + time.Second - 1) / time.Second
	return secs * time.Second
}
