package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingStore struct{}

func (failingStore) Admit(context.Context, string, Category, Rule, time.Time) (Decision, error) {
	return Decision{}, errors.New("backend unreachable")
}

func (failingStore) Sweep(time.Time) {}

type countingMetrics struct {
	mu       sync.Mutex
	admitted map[Category]int
	rejected map[Category]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		admitted: make(map[Category]int),
		rejected: make(map[Category]int),
	}
}

func (m *countingMetrics) RequestAdmitted(cat Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admitted[cat]++
}

func (m *countingMetrics) RequestRejected(cat Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[cat]++
}

func TestLimiter_AdmitUsesConfiguredRule(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Rules: map[Category]Rule{
			CategoryLogin: {Window: time.Hour, Max: 2},
		},
	}
	metrics := newCountingMetrics()
	l := New(testLogger(), NewMemoryStore(), cfg, WithMetrics(metrics))

	ctx := context.Background()
	if dec := l.Admit(ctx, "c", CategoryLogin); !dec.Allowed || dec.Limit != 2 {
		t.Fatalf("unexpected decision: %+v", dec)
	}
	if dec := l.Admit(ctx, "c", CategoryLogin); !dec.Allowed {
		t.Fatalf("second call should pass")
	}
	if dec := l.Admit(ctx, "c", CategoryLogin); dec.Allowed {
		t.Fatalf("third call should be rejected")
	}

	if metrics.admitted[CategoryLogin] != 2 || metrics.rejected[CategoryLogin] != 1 {
		t.Fatalf("metrics mismatch: %+v / %+v", metrics.admitted, metrics.rejected)
	}
}

func TestLimiter_UnknownCategoryFallsBackToGeneral(t *testing.T) {
	t.Parallel()

	l := New(testLogger(), NewMemoryStore(), DefaultConfig())

	got := l.Rule(Category("bogus"))
	want := DefaultConfig().Rules[CategoryGeneral]
	if got != want {
		t.Fatalf("rule=%+v want=%+v", got, want)
	}
}

func TestLimiter_StoreFailureAdmits(t *testing.T) {
	t.Parallel()

	l := New(testLogger(), failingStore{}, DefaultConfig())

	dec := l.Admit(context.Background(), "c", CategoryGeneral)
	if !dec.Allowed {
		t.Fatalf("store failure must not reject traffic")
	}
}

func TestLimiter_StartStop(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SweepEvery = 10 * time.Millisecond
	l := New(testLogger(), NewMemoryStore(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l.Start(ctx)
	l.Start(ctx) // idempotent
	l.Stop()
	l.Stop() // idempotent
}

func TestLimiter_StopBeforeStart(t *testing.T) {
	t.Parallel()

	l := New(testLogger(), NewMemoryStore(), DefaultConfig())
	l.Stop() // must not block or panic
}
