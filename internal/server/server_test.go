package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	s, err := New(Config{
		Port:      0,
		DBPath:    ":memory:",
		JWTSecret: "test-secret-0123456789abcdef",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)

	return s
}

func TestNew_RejectsShortSecret(t *testing.T) {
	_, err := New(Config{
		DBPath:    ":memory:",
		JWTSecret: "short",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("New() accepted a too-short JWT secret")
	}
}

func TestRoutes_Wired(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/events/", http.StatusOK},
		{http.MethodGet, "/api/events/nope", http.StatusNotFound},
		{http.MethodGet, "/api/auth/current", http.StatusUnauthorized},
		{http.MethodPost, "/api/auth/logout", http.StatusUnauthorized},
		{http.MethodPatch, "/api/user/", http.StatusUnauthorized},
		{http.MethodGet, "/metrics", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rec.Code, tt.status)
		}
	}
}

func TestMetrics_CountTraffic(t *testing.T) {
	s := newTestServer(t)

	// Generate some traffic, then scrape.
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("list events: status = %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape: status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `eventplanner_http_requests_total{method="GET",status="200"}`) {
		t.Error("scrape output missing the GET/200 counter")
	}
}
