package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddlewareAllowAll(t *testing.T) {
	for _, origins := range [][]string{nil, {"*"}, {"https://a.org", "*"}} {
		handler := CORSMiddleware(CORSConfig{AllowedOrigins: origins}, okHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/parse", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("origins %v: status = %d, want 200", origins, w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("origins %v: Allow-Origin = %q, want *", origins, got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("origins %v: Allow-Credentials = %q, want empty", origins, got)
		}
	}
}

func TestCORSMiddlewareRestrictedOrigins(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://example.com", "https://trusted.com"}}
	handler := CORSMiddleware(cfg, okHandler())

	tests := []struct {
		name            string
		method          string
		origin          string
		wantStatus      int
		wantAllowOrigin string
	}{
		{"allowed origin", http.MethodGet, "https://example.com", http.StatusOK, "https://example.com"},
		{"second allowed origin", http.MethodGet, "https://trusted.com", http.StatusOK, "https://trusted.com"},
		{"disallowed origin passes without headers", http.MethodGet, "https://evil.com", http.StatusOK, ""},
		{"no origin", http.MethodGet, "", http.StatusOK, ""},
		{"preflight allowed", http.MethodOptions, "https://example.com", http.StatusNoContent, "https://example.com"},
		{"preflight disallowed", http.MethodOptions, "https://evil.com", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllowOrigin)
			}
			wantCreds := ""
			if tt.wantAllowOrigin != "" {
				wantCreds = "true"
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != wantCreds {
				t.Errorf("Allow-Credentials = %q, want %q", got, wantCreds)
			}
		})
	}
}

func TestCORSAllowsOrigin(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://example.com"}}
	if !cfg.AllowsOrigin("") {
		t.Error("AllowsOrigin(\"\") = false, want true")
	}
	if !cfg.AllowsOrigin("https://example.com") {
		t.Error("AllowsOrigin(listed) = false, want true")
	}
	if cfg.AllowsOrigin("https://evil.com") {
		t.Error("AllowsOrigin(unlisted) = true, want false")
	}
	if !(CORSConfig{}).AllowsOrigin("https://evil.com") {
		t.Error("empty config should allow every origin")
	}
}

func TestTimingMiddleware(t *testing.T) {
	called := false
	handler := TimingMiddleware(time.Hour, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("next handler not called")
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTeapot)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		want       string
	}{
		{"remote addr", "192.0.2.1:1234", "", "", "192.0.2.1"},
		{"forwarded leftmost", "10.0.0.1:1", "203.0.113.5, 10.0.0.2", "", "203.0.113.5"},
		{"forwarded invalid falls back to real ip", "10.0.0.1:1", "bogus", "198.51.100.7", "198.51.100.7"},
		{"real ip", "10.0.0.1:1", "", "198.51.100.7", "198.51.100.7"},
		{"ipv6", "[2001:db8::1]:80", "", "", "2001:db8::1"},
		{"bare address", "192.0.2.9", "", "", "192.0.2.9"},
		{"garbage", "nowhere", "", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
