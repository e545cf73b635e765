package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the shared bucket for requests whose origin cannot be
// determined. All such requests contend for one budget, which is the safe
// direction for an unattributable client.
const UnknownClient = "unknown"

// forwardedHeaders is the ordered list of proxy headers consulted when the
// deployment declares its proxy trustworthy. Header order matters: the
// leftmost X-Forwarded-For entry is the original client.
var forwardedHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

// ClientID derives the rate-limit key for a request.
//
// Forwarded headers are client-supplied and spoofable, so they are only
// honored when trustProxy is set (i.e. the process sits behind a proxy that
// overwrites them). Otherwise the TCP peer address is authoritative.
func ClientID(r *http.Request, trustProxy bool) string {
	if r == nil {
		return UnknownClient
	}

	if trustProxy {
		for _, h := range forwardedHeaders {
			if ip := firstForwardedIP(r.Header.Get(h)); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if v := strings.TrimSpace(r.RemoteAddr); v != "" {
		return v
	}
	return UnknownClient
}

func firstForwardedIP(raw string) string {
	if raw == "" {
		return ""
	}
	for _, part := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
