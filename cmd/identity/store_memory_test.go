package identity

import (
	"context"
	"testing"
	"time"
)

func newTestUser(t *testing.T, s *MemoryStore, email string, role Role) User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), CreateUserInput{
		Email:    email,
		Name:     "Test User",
		Password: "a perfectly fine passphrase",
		Role:     role,
		Now:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestMemoryStore_CreateAndLookup(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	u := newTestUser(t, s, "Shopper@Example.com", RoleCustomer)

	if u.ID == "" || len(u.ID) != 26 {
		t.Fatalf("expected ULID id, got %q", u.ID)
	}
	if !u.Active {
		t.Fatalf("new users must be active")
	}

	byID, err := s.GetUserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Email != "Shopper@Example.com" {
		t.Fatalf("email mismatch: %q", byID.Email)
	}

	// Lookup is case-insensitive on email.
	byEmail, err := s.GetUserByEmail(context.Background(), "shopper@example.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("id mismatch: %q vs %q", byEmail.ID, u.ID)
	}
}

func TestMemoryStore_DuplicateEmailConflict(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	newTestUser(t, s, "shopper@example.com", RoleCustomer)

	_, err := s.CreateUser(context.Background(), CreateUserInput{
		Email:    "SHOPPER@example.com",
		Password: "another fine passphrase",
	})
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryStore_SetRoleAndActive(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	u := newTestUser(t, s, "shopper@example.com", RoleCustomer)
	now := time.Now().UTC()

	if err := s.SetRole(context.Background(), u.ID, RoleAdmin, now); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if err := s.SetActive(context.Background(), u.ID, false, now); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	got, err := s.GetUserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Role != RoleAdmin {
		t.Fatalf("expected role admin, got %v", got.Role)
	}
	if got.Active {
		t.Fatalf("expected deactivated user")
	}

	if err := s.SetRole(context.Background(), u.ID, Role("root"), now); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input for unknown role, got %v", err)
	}
	if err := s.SetRole(context.Background(), "missing", RoleAdmin, now); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_PasswordRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	u := newTestUser(t, s, "shopper@example.com", RoleCustomer)

	ok, err := VerifyPassword("a perfectly fine passphrase", u.PasswordHash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to verify")
	}

	ok, err = VerifyPassword("wrong passphrase entirely", u.PasswordHash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}
