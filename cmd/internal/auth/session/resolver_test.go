package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopgate/cmd/identity"
)

func newResolverFixture(t *testing.T) (*Resolver, CredentialManager, *identity.MemoryStore, identity.User, Config) {
	t.Helper()

	cfg := testConfig()
	mgr, err := NewPasetoV4PublicManager(cfg)
	if err != nil {
		t.Fatalf("NewPasetoV4PublicManager: %v", err)
	}

	users := identity.NewMemoryStore()
	u, err := users.CreateUser(context.Background(), identity.CreateUserInput{
		Email:    "shopper@example.com",
		Password: "a perfectly fine passphrase",
		Role:     identity.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(log, cfg, mgr, users), mgr, users, u, cfg
}

func requestWithCredential(t *testing.T, mgr CredentialManager, u identity.User) *http.Request {
	t.Helper()

	tok, exp, err := mgr.Issue(u, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rr := httptest.NewRecorder()
	SetCredentialCookie(rr, tok, exp, Config{CookieSecure: false})

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	for _, c := range rr.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestResolveCurrentUser_OK(t *testing.T) {
	rs, mgr, _, u, _ := newResolverFixture(t)

	got, err := rs.ResolveCurrentUser(context.Background(), requestWithCredential(t, mgr, u))
	if err != nil {
		t.Fatalf("ResolveCurrentUser: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("id mismatch: %q vs %q", got.ID, u.ID)
	}
	if got.PasswordHash != "" {
		t.Fatalf("resolved user must be sanitized")
	}
}

func TestResolveCurrentUser_NoCookie(t *testing.T) {
	rs, _, _, _, _ := newResolverFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if _, err := rs.ResolveCurrentUser(context.Background(), r); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveCurrentUser_GarbageCookie(t *testing.T) {
	rs, _, _, _, _ := newResolverFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "v4.public.garbage"})
	if _, err := rs.ResolveCurrentUser(context.Background(), r); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveCurrentUser_UserDeleted(t *testing.T) {
	rs, mgr, users, u, _ := newResolverFixture(t)

	r := requestWithCredential(t, mgr, u)
	users.Delete(u.ID)

	// The raw credential still verifies; resolution must fail anyway.
	if _, err := mgr.Verify(mustCookie(t, r), time.Now().UTC()); err != nil {
		t.Fatalf("credential itself should verify: %v", err)
	}
	if _, err := rs.ResolveCurrentUser(context.Background(), r); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveCurrentUser_UserDeactivated(t *testing.T) {
	rs, mgr, users, u, _ := newResolverFixture(t)

	r := requestWithCredential(t, mgr, u)
	if err := users.SetActive(context.Background(), u.ID, false, time.Now().UTC()); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	if _, err := rs.ResolveCurrentUser(context.Background(), r); err != ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveCurrentUser_RoleChangeVisible(t *testing.T) {
	rs, mgr, users, u, _ := newResolverFixture(t)

	r := requestWithCredential(t, mgr, u)
	if err := users.SetRole(context.Background(), u.ID, identity.RoleAdmin, time.Now().UTC()); err != nil {
		t.Fatalf("SetRole: %v", err)
	}

	got, err := rs.ResolveCurrentUser(context.Background(), r)
	if err != nil {
		t.Fatalf("ResolveCurrentUser: %v", err)
	}
	// The stored role wins over the role embedded at issuance.
	if got.Role != identity.RoleAdmin {
		t.Fatalf("role=%v want=admin", got.Role)
	}
}

func mustCookie(t *testing.T, r *http.Request) string {
	t.Helper()

	raw, ok := CredentialFromRequest(r)
	if !ok {
		t.Fatalf("request has no credential cookie")
	}
	return raw
}
