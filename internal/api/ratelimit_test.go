package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst of 2 not allowed")
	}
	if rl.Allow("a") {
		t.Error("third request within burst allowed")
	}
	if !rl.Allow("b") {
		t.Error("other client limited")
	}

	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Error("token not refilled after one second at 60/min")
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(4 * time.Minute)
	rl.Allow("new")
	now = now.Add(2 * time.Minute)
	rl.Prune()

	if rl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", rl.Len())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, Config{RateLimit: 60, RateBurst: 1})
	h := s.Handler()

	first, _ := doRequest(t, h, http.MethodGet, parseURL("Мф. 1"), "")
	if first.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", first.Code)
	}
	if got := first.Header().Get("X-RateLimit-Limit"); got != "60" {
		t.Errorf("X-RateLimit-Limit = %q, want 60", got)
	}

	second, resp := doRequest(t, h, http.MethodGet, parseURL("Мф. 1"), "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if resp.Error == nil || resp.Error.Code != CodeRateLimited {
		t.Errorf("Error = %+v", resp.Error)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, parseURL("Мф. 1"), nil)
	req.RemoteAddr = "198.51.100.9:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", w.Code)
	}
}
