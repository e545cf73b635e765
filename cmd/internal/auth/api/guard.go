package authapi

import (
	"context"
	"net/http"

	"shopgate/cmd/identity"
	"shopgate/cmd/internal/auth/session"
)

type contextKey int

const userContextKey contextKey = iota

// UserFromContext returns the authenticated user attached by a guard.
func UserFromContext(ctx context.Context) (identity.User, bool) {
	u, ok := ctx.Value(userContextKey).(identity.User)
	return u, ok
}

// Guard builds route middleware that resolves the current user from the
// request credential before the wrapped handler runs.
type Guard struct {
	resolver *session.Resolver
}

// NewGuard constructs a Guard over the given resolver.
func NewGuard(resolver *session.Resolver) *Guard {
	return &Guard{resolver: resolver}
}

// RequireAuthenticated rejects requests without a valid credential with 401.
// On success the resolved user is attached to the request context.
func (g *Guard) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.resolver.ResolveCurrentUser(r.Context(), r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

// RequireRole rejects unauthenticated requests with 401 and authenticated
// requests whose role does not satisfy the requirement with 403. Role is
// checked against the freshly loaded user record, not the credential claims,
// so demotions take effect on the next request.
func (g *Guard) RequireRole(required identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.resolver.ResolveCurrentUser(r.Context(), r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if !user.Role.Satisfies(required) {
				writeError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
		})
	}
}
