package authapi

import (
	"log/slog"
	"net/http"
	"time"

	"shopgate/cmd/identity"
	"shopgate/cmd/internal/auth/session"
)

// Handler wires HTTP auth endpoints to identity/session services.
type Handler struct {
	log *slog.Logger
	cfg Config

	users    identity.Store
	tokens   session.CredentialManager
	resolver *session.Resolver
	sessCfg  session.Config

	dummyHash string
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, sessCfg session.Config, users identity.Store, tokens session.CredentialManager, resolver *session.Resolver) *Handler {
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		resolver: resolver,
		sessCfg:  sessCfg,
	}

	// Dummy hash for timing-resistant login checks.
	if hash, err := identity.HashPassword("dummy-password-for-timing-only", identity.DefaultArgon2idParams()); err == nil {
		h.dummyHash = hash
	}

	return h
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/auth/me", h.handleMe)
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	email := identity.NormalizeEmail(req.Email)
	password := req.Password
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	user, err := h.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Timing resistance: perform a dummy verify when user is missing.
		if h.dummyHash != "" {
			_, _ = identity.VerifyPassword(password, h.dummyHash)
		}
		if !identity.IsNotFound(err) {
			h.log.Error("auth.login.lookup.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
			return
		}
		h.log.Info("auth.login.fail", "reason", "not_found")
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	okPw, err := identity.VerifyPassword(password, user.PasswordHash)
	if err != nil || !okPw {
		h.log.Info("auth.login.fail", "reason", "bad_password", "user_id", user.ID)
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}
	if !user.Active {
		h.log.Info("auth.login.fail", "reason", "inactive", "user_id", user.ID)
		writeError(w, http.StatusForbidden, "account_inactive", "account is deactivated")
		return
	}
	if h.cfg.RequireEmailVerified && !user.EmailVerified {
		h.log.Info("auth.login.fail", "reason", "email_not_verified", "user_id", user.ID)
		writeError(w, http.StatusForbidden, "email_not_verified", "email verification required")
		return
	}

	token, exp, err := h.tokens.Issue(user, now)
	if err != nil {
		h.log.Error("auth.login.issue.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	session.SetCredentialCookie(w, token, exp, h.sessCfg)

	h.log.Info("auth.login.ok", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusOK, loginResponse{
		User:      toUserResponse(user.Sanitized()),
		ExpiresAt: exp,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Logout is idempotent: clear the cookie whether or not the credential
	// was valid. There is no server-side state to revoke.
	if user, err := h.resolver.ResolveCurrentUser(r.Context(), r); err == nil {
		h.log.Info("auth.logout.ok", "user_id", user.ID)
	}

	session.ClearCredentialCookie(w, h.sessCfg)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user, err := h.resolver.ResolveCurrentUser(r.Context(), r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: toUserResponse(user)})
}
