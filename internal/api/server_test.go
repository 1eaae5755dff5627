package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthNoAuth(t *testing.T) {
	srv := newTestServer(t, "secret-key")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, "secret-key")

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthBearerToken(t *testing.T) {
	srv := newTestServer(t, "secret-key")

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status with bearer token = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthAPIKeyHeader(t *testing.T) {
	srv := newTestServer(t, "secret-key")

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("X-API-Key", "secret-key")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status with X-API-Key = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthWrongKey(t *testing.T) {
	srv := newTestServer(t, "secret-key")

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status with wrong key = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status without configured key = %d, want %d", w.Code, http.StatusOK)
	}
}
