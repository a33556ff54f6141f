package httputil

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP returns the address the request originated from.
// The first parseable entry of X-Forwarded-For wins, then X-Real-IP, then RemoteAddr.
// Malformed header values are skipped rather than reported.
func GetClientIP(r *http.Request) string {
	for _, candidate := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := parseIP(candidate); ip != "" {
			return ip
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if ip := parseIP(r.RemoteAddr); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// parseIP accepts a bare or bracketed address with an optional port and returns its canonical form
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")

	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
