package session

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the credential cookie. One fixed name; the attributes below
// are non-negotiable except Secure, which config may drop for plain-HTTP dev.
const CookieName = "auth-token"

// SetCredentialCookie writes the credential to the response.
func SetCredentialCookie(w http.ResponseWriter, token string, exp time.Time, cfg Config) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCredentialCookie expires the credential cookie. This is the entirety
// of logout: the credential itself stays cryptographically valid until expiry.
func ClearCredentialCookie(w http.ResponseWriter, cfg Config) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// CredentialFromRequest extracts the raw credential from the request cookie.
func CredentialFromRequest(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}
