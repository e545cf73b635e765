package identity

import (
	"strings"
	"time"
)

// Role is the closed set of storefront roles.
//
// Role checks go through Satisfies rather than raw string comparison so a
// typo'd role can never silently grant or deny access.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole canonicalizes a stored role string into a Role.
// Unknown values map to RoleCustomer with ok=false; callers deciding
// authorization MUST treat ok=false as a denial, never as a grant.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return RoleCustomer, false
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin:
		return true
	default:
		return false
	}
}

// Satisfies reports whether r meets the given role requirement.
// Admin satisfies every requirement; unknown roles satisfy nothing.
func (r Role) Satisfies(required Role) bool {
	if !r.Valid() || !required.Valid() {
		return false
	}
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// User is shopgate's canonical security principal.
//
// PasswordHash and VerificationCodeHash are server-side secrets and MUST be
// stripped (Sanitized) before the user leaves the gate.
type User struct {
	ID    string
	Email string
	Name  string
	Role  Role

	Active        bool
	EmailVerified bool

	PasswordHash         string
	VerificationCodeHash string

	CreatedAt time.Time
}

// Sanitized returns a copy of the user with sensitive fields removed.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.VerificationCodeHash = ""
	return u
}
