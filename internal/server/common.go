// Package server provides shared middleware for lectio's HTTP servers.
package server

import (
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/FocuswithJustin/lectio/internal/logging"
)

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	// AllowedOrigins lists permitted origins. Empty or "*" allows all.
	AllowedOrigins []string
}

func (c CORSConfig) allowAll() bool {
	return len(c.AllowedOrigins) == 0 || slices.Contains(c.AllowedOrigins, "*")
}

// AllowsOrigin reports whether a request from origin may proceed. Requests
// without an Origin header are same-origin and always allowed.
func (c CORSConfig) AllowsOrigin(origin string) bool {
	return origin == "" || c.allowAll() || slices.Contains(c.AllowedOrigins, origin)
}

// CORSMiddleware adds CORS headers for permitted origins. Preflight
// requests from other origins are refused with 403; other requests pass
// through without CORS headers so the browser blocks the response.
func CORSMiddleware(cfg CORSConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := "*"
		if !cfg.allowAll() {
			if !slices.Contains(cfg.AllowedOrigins, origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			allowed = origin
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		w.Header().Set("Access-Control-Allow-Origin", allowed)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TimingMiddleware warns about requests slower than threshold.
func TimingMiddleware(threshold time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if d := time.Since(start); d > threshold {
			logging.WarnContext(r.Context(), "slow request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", d.Milliseconds())
		}
	})
}

// ClientIP returns the caller's address: the leftmost valid
// X-Forwarded-For entry, then X-Real-IP, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if net.ParseIP(host) != nil {
		return host
	}
	return "unknown"
}
