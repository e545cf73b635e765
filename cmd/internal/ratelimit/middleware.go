package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Middleware gates next behind the limiter for the given category.
//
// The four X-RateLimit/Retry-After headers are set on every response so
// well-behaved clients can pace themselves before hitting the wall.
func (l *Limiter) Middleware(cat Category, trustProxy bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dec := l.Admit(r.Context(), ClientID(r, trustProxy), cat)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(dec.ResetAt.Unix(), 10))

			if !dec.Allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(int64(dec.RetryAfter.Seconds()), 10))
				writeRateLimited(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "rate_limited",
			"message": "too many requests",
		},
	})
}
