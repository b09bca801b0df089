package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowance(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 10; i++ {
		if !rl.Allow("10.0.0.1", 10, time.Minute) {
			t.Fatalf("request %d within the limit was denied", i+1)
		}
	}
	if rl.Allow("10.0.0.1", 10, time.Minute) {
		t.Error("request over the limit was allowed")
	}

	// Separate keys get separate budgets
	if !rl.Allow("10.0.0.2", 10, time.Minute) {
		t.Error("fresh key was denied")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter()
	window := 10 * time.Millisecond

	for i := 0; i < 3; i++ {
		rl.Allow("10.0.0.1", 3, window)
	}
	if rl.Allow("10.0.0.1", 3, window) {
		t.Error("expected denial inside the window")
	}

	time.Sleep(window + 5*time.Millisecond)

	if !rl.Allow("10.0.0.1", 3, window) {
		t.Error("expected a fresh budget after the window passed")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()

	rl.Allow("stale", 5, 10*time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	rl.Allow("live", 5, time.Minute)

	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.entries["stale"]; ok {
		t.Error("stale entry survived cleanup")
	}
	if _, ok := rl.entries["live"]; !ok {
		t.Error("live entry was removed by cleanup")
	}
}

func TestRateLimitMiddlewareRejects(t *testing.T) {
	rl := NewRateLimiter()
	keyFunc := func(r *http.Request) string { return "login" }

	var hits int
	handler := RateLimit(rl, keyFunc, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/login", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if hits != 2 {
		t.Errorf("handler ran %d times, want 2", hits)
	}
}
