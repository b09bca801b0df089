package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RealIP returns the client address, trusting the first X-Forwarded-For hop
// when a reverse proxy set one and falling back to the socket address.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// bucket is a fixed-window counter for one key.
type bucket struct {
	n       int
	resetAt time.Time
}

// RateLimiter tracks per-key request counts in memory.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*bucket
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{entries: make(map[string]*bucket)}
}

// Allow records one request against the key and reports whether it fits
// inside limit for the current window.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b := rl.entries[key]
	if b == nil || now.After(b.resetAt) {
		rl.entries[key] = &bucket{n: 1, resetAt: now.Add(window)}
		return true
	}
	b.n++
	return b.n <= limit
}

// Cleanup drops buckets whose windows have passed. Called periodically so
// one-off clients do not accumulate forever.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, b := range rl.entries {
		if now.After(b.resetAt) {
			delete(rl.entries, key)
		}
	}
}

// RateLimit rejects requests over the limit with a JSON 429. keyFunc decides
// the bucketing, typically RealIP.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(keyFunc(r), limit, window) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": "too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
