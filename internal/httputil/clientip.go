// Package httputil holds small helpers shared by the HTTP handlers and
// middleware.
package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address of the caller, the key for request logs
// and per-client query limits.
// With trustProxy, the leftmost X-Forwarded-For entry and then X-Real-IP
// are used when they parse as IP addresses; RemoteAddr is the fallback.
// Only enable trustProxy behind a reverse proxy that sets these headers.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		if ip := validIP(first); ip != "" {
			return ip
		}
		if ip := validIP(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func validIP(s string) string {
	s = strings.TrimSpace(s)
	if net.ParseIP(s) == nil {
		return ""
	}
	return s
}
