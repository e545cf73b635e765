package ratelimit

import (
	"context"
	"testing"
	"time"
)

var testRule = Rule{Window: 60 * time.Second, Max: 3}

func mustAdmit(t *testing.T, s CounterStore, client string, cat Category, rule Rule, now time.Time) Decision {
	t.Helper()

	dec, err := s.Admit(context.Background(), client, cat, rule, now)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	return dec
}

func TestMemoryStore_WindowExhaustion(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Calls 1..3 are admitted with remaining 2, 1, 0.
	for i, wantRemaining := range []int{2, 1, 0} {
		dec := mustAdmit(t, s, "1.2.3.4", CategoryGeneral, testRule, now.Add(time.Duration(i)*time.Second))
		if !dec.Allowed {
			t.Fatalf("call %d: expected allowed", i+1)
		}
		if dec.Remaining != wantRemaining {
			t.Fatalf("call %d: remaining=%d want=%d", i+1, dec.Remaining, wantRemaining)
		}
		if dec.Limit != 3 {
			t.Fatalf("call %d: limit=%d want=3", i+1, dec.Limit)
		}
	}

	// Call 4 within the window is rejected with a positive retry hint.
	dec := mustAdmit(t, s, "1.2.3.4", CategoryGeneral, testRule, now.Add(10*time.Second))
	if dec.Allowed {
		t.Fatalf("expected rejection")
	}
	if dec.Remaining != 0 {
		t.Fatalf("remaining=%d want=0", dec.Remaining)
	}
	if dec.RetryAfter <= 0 {
		t.Fatalf("expected positive RetryAfter, got %v", dec.RetryAfter)
	}
	if want := now.Add(testRule.Window); !dec.ResetAt.Equal(want) {
		t.Fatalf("ResetAt=%v want=%v", dec.ResetAt, want)
	}
}

func TestMemoryStore_RejectionDoesNotIncrement(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rule := Rule{Window: 60 * time.Second, Max: 1}

	mustAdmit(t, s, "c", CategoryLogin, rule, now)

	// Many rejections must not push the counter past max: the moment the
	// window rolls over, admission resumes immediately.
	for i := 0; i < 50; i++ {
		dec := mustAdmit(t, s, "c", CategoryLogin, rule, now.Add(time.Duration(i)*time.Second))
		if i > 0 && dec.Allowed {
			t.Fatalf("call %d: expected rejection", i)
		}
	}

	dec := mustAdmit(t, s, "c", CategoryLogin, rule, now.Add(61*time.Second))
	if !dec.Allowed {
		t.Fatalf("expected admission after window expiry")
	}
}

func TestMemoryStore_WindowReset(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		mustAdmit(t, s, "1.2.3.4", CategoryGeneral, testRule, now)
	}
	if dec := mustAdmit(t, s, "1.2.3.4", CategoryGeneral, testRule, now.Add(30*time.Second)); dec.Allowed {
		t.Fatalf("expected rejection inside window")
	}

	// 61s after the first call the window has expired: fresh budget.
	dec := mustAdmit(t, s, "1.2.3.4", CategoryGeneral, testRule, now.Add(61*time.Second))
	if !dec.Allowed {
		t.Fatalf("expected admission after reset")
	}
	if dec.Remaining != 2 {
		t.Fatalf("remaining=%d want=2 after reset", dec.Remaining)
	}

	// A further max-1 calls succeed before the next rejection.
	mustAdmit(t, s, "1.2.3.4", CategoryGeneral, testRule, now.Add(62*time.Second))
	mustAdmit(t, s, "1.2.3.4", CategoryGeneral, testRule, now.Add(63*time.Second))
	if dec := mustAdmit(t, s, "1.2.3.4", CategoryGeneral, testRule, now.Add(64*time.Second)); dec.Allowed {
		t.Fatalf("expected rejection after refilled budget spent")
	}
}

func TestMemoryStore_CategoriesAreIsolated(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rule := Rule{Window: 60 * time.Second, Max: 1}

	mustAdmit(t, s, "c", CategoryLogin, rule, now)
	if dec := mustAdmit(t, s, "c", CategoryLogin, rule, now); dec.Allowed {
		t.Fatalf("login budget should be exhausted")
	}

	// Same client, different category: independent counter.
	if dec := mustAdmit(t, s, "c", CategoryUpload, rule, now); !dec.Allowed {
		t.Fatalf("upload budget must be independent of login")
	}
}

func TestMemoryStore_ClientsAreIsolated(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rule := Rule{Window: 60 * time.Second, Max: 1}

	mustAdmit(t, s, "1.2.3.4", CategoryGeneral, rule, now)
	if dec := mustAdmit(t, s, "5.6.7.8", CategoryGeneral, rule, now); !dec.Allowed {
		t.Fatalf("second client must have its own budget")
	}
}

func TestMemoryStore_RetryAfterCeil(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rule := Rule{Window: 60 * time.Second, Max: 1}

	mustAdmit(t, s, "c", CategoryGeneral, rule, now)

	// 500ms before reset rounds up to a full second.
	dec := mustAdmit(t, s, "c", CategoryGeneral, rule, now.Add(59*time.Second+500*time.Millisecond))
	if dec.Allowed {
		t.Fatalf("expected rejection")
	}
	if dec.RetryAfter != time.Second {
		t.Fatalf("RetryAfter=%v want=1s", dec.RetryAfter)
	}

	dec = mustAdmit(t, s, "c", CategoryGeneral, rule, now.Add(30*time.Second))
	if dec.RetryAfter != 30*time.Second {
		t.Fatalf("RetryAfter=%v want=30s", dec.RetryAfter)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	short := Rule{Window: 10 * time.Second, Max: 5}
	long := Rule{Window: 10 * time.Minute, Max: 5}

	mustAdmit(t, s, "old", CategoryGeneral, short, now)
	mustAdmit(t, s, "live", CategoryGeneral, long, now)
	mustAdmit(t, s, "live", CategoryGeneral, long, now)

	s.Sweep(now.Add(30 * time.Second))

	if got := s.Len(); got != 1 {
		t.Fatalf("expected 1 counter after sweep, got %d", got)
	}

	// The surviving counter kept its count and window: third call still
	// consumes from the original budget.
	dec := mustAdmit(t, s, "live", CategoryGeneral, long, now.Add(31*time.Second))
	if dec.Remaining != 2 {
		t.Fatalf("remaining=%d want=2 (sweep must not touch active entries)", dec.Remaining)
	}
	if want := now.Add(long.Window); !dec.ResetAt.Equal(want) {
		t.Fatalf("ResetAt=%v want=%v", dec.ResetAt, want)
	}
}
