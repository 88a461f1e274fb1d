package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/FocuswithJustin/lectio/internal/server"
)

// RateLimiter applies a per-client token bucket.
type RateLimiter struct {
	perMinute int
	burst     int
	ttl       time.Duration

	mu      sync.Mutex
	clients map[string]*visitor
	now     func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client with bursts of
// burst requests.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		burst:     burst,
		ttl:       5 * time.Minute,
		clients:   make(map[string]*visitor),
		now:       time.Now,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.clients[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60), rl.burst)}
		rl.clients[key] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Allow reports whether key may make a request now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).AllowN(rl.now(), 1)
}

// retryAfter reserves a token for key. It returns 0 when the request may
// proceed, or how long the caller must wait.
func (rl *RateLimiter) retryAfter(key string) time.Duration {
	now := rl.now()
	r := rl.limiter(key).ReserveN(now, 1)
	if !r.OK() {
		return time.Minute
	}
	d := r.DelayFrom(now)
	if d > 0 {
		r.CancelAt(now)
	}
	return d
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Prune forgets clients idle for longer than the TTL.
func (rl *RateLimiter) Prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.ttl)
	for k, v := range rl.clients {
		if v.lastSeen.Before(cutoff) {
			delete(rl.clients, k)
		}
	}
}

// Run prunes idle clients every minute until ctx ends.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Prune()
		}
	}
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.perMinute))
		if d := rl.retryAfter(server.ClientIP(r)); d > 0 {
			secs := int(math.Ceil(d.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			respondError(w, r, http.StatusTooManyRequests, CodeRateLimited,
				fmt.Sprintf("rate limit exceeded, retry in %d seconds", secs))
			return
		}
		next.ServeHTTP(w, r)
	})
}
