package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"shopgate/cmd/identity"
)

// Resolver turns an incoming request into an authenticated user, or
// ErrUnauthenticated.
//
// Every resolution re-loads the user record: the embedded claims prove who
// the credential was issued to, but role and active status are
// server-authoritative and may have changed since issuance.
type Resolver struct {
	log    *slog.Logger
	cfg    Config
	tokens CredentialManager
	users  identity.Store
}

// NewResolver constructs a Resolver.
func NewResolver(log *slog.Logger, cfg Config, tokens CredentialManager, users identity.Store) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{log: log, cfg: cfg, tokens: tokens, users: users}
}

// ResolveCurrentUser resolves the request's credential to a sanitized user.
//
// All failure modes collapse into ErrUnauthenticated: missing cookie, invalid
// or expired credential, user deleted since issuance, user deactivated, and
// store timeouts. A storage outage degrades this request to unauthenticated
// instead of crashing or hanging; fail-closed beats availability here.
func (rs *Resolver) ResolveCurrentUser(ctx context.Context, r *http.Request) (identity.User, error) {
	raw, ok := CredentialFromRequest(r)
	if !ok {
		return identity.User{}, ErrUnauthenticated
	}

	claims, err := rs.tokens.Verify(raw, time.Now().UTC())
	if err != nil {
		return identity.User{}, ErrUnauthenticated
	}

	lookupCtx, cancel := context.WithTimeout(ctx, rs.cfg.ResolveTimeout)
	defer cancel()

	u, err := rs.users.GetUserByID(lookupCtx, claims.UserID)
	if err != nil {
		if !identity.IsNotFound(err) {
			// Infrastructure failure, not a bad credential. Log it; the
			// caller still just sees "unauthenticated".
			rs.log.Error("auth.resolve.store.fail", "err", err)
		}
		return identity.User{}, ErrUnauthenticated
	}
	if !u.Active {
		return identity.User{}, ErrUnauthenticated
	}

	return u.Sanitized(), nil
}
