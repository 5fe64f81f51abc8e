package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter()
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("ip", 3) {
			t.Fatalf("request %d should pass", i)
		}
	}
	if rl.Allow("ip", 3) {
		t.Error("fourth request should be throttled")
	}
	if !rl.Allow("other", 3) {
		t.Error("other keys have their own bucket")
	}

	// 3 per minute refills one token every 20s
	now = now.Add(20 * time.Second)
	if !rl.Allow("ip", 3) {
		t.Error("expected refill after 20s")
	}
}

func TestRateLimiter_Limit(t *testing.T) {
	rl := NewRateLimiter()
	defer rl.Stop()

	handler := rl.Limit("public", 1)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/public/acme", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	handler(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("got %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") != "60" {
		t.Error("missing Retry-After")
	}
}
