package identity

import (
	"context"
	"time"
)

// CreateUserInput describes a storefront registration request.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     Role
	Now      time.Time
}

// Store is the identity persistence boundary consumed by the auth gate.
//
// Contract:
//   - GetUserByID returns ErrNotFound for unknown ids. It returns the row even
//     when the user is deactivated; callers re-check Active on every
//     resolution (revoking an account must bite already-issued credentials).
//   - GetUserByEmail matches on the normalized email and returns the full row
//     including PasswordHash, for login verification only.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// SetRole and SetActive exist for admin user management; the gate itself
	// only reads, but role/active changes must be visible to the very next
	// ResolveCurrentUser call.
	SetRole(ctx context.Context, id string, role Role, now time.Time) error
	SetActive(ctx context.Context, id string, active bool, now time.Time) error
}
