package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	// Burst of 2 for one key
	if !rl.Allow("1.1.1.1") {
		t.Error("first request should be allowed")
	}
	if !rl.Allow("1.1.1.1") {
		t.Error("second request (within burst) should be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("third request should be rejected")
	}

	// Other keys have their own budget
	if !rl.Allow("2.2.2.2") {
		t.Error("different key should be allowed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "3.3.3.3:1234"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want %d", w.Code, http.StatusOK)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Error("Retry-After header missing")
	}
}

func TestRateLimitMiddlewareUsesRealIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Exhaust the budget for one forwarded IP
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Real-IP", "9.9.9.9")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// A different forwarded IP behind the same proxy is unaffected
	req2 := httptest.NewRequest("GET", "/", nil)
	req2.Header.Set("X-Real-IP", "8.8.8.8")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req2)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
