package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-api/internal/auth"
	"portfolio-api/internal/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	// fresh id assigned when none supplied
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if seen == "" || rec.Header().Get("X-Request-Id") != seen {
		t.Fatalf("expected generated request id in context and header, got %q / %q", seen, rec.Header().Get("X-Request-Id"))
	}

	// inbound id is propagated untouched
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-Id", "rid-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "rid-123" {
		t.Fatalf("expected inbound request id to be kept, got %q", seen)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/add", nil))

	for header, want := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Cache-Control":          "no-cache, no-store, must-revalidate",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Fatalf("%s = %q, want %q", header, got, want)
		}
	}

	// non-API paths are cacheable
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Cache-Control") != "" {
		t.Fatal("Cache-Control must only be forced for /api/ paths")
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := CORS("https://example.dev")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/add", nil))

	if called {
		t.Fatal("preflight must short-circuit before the handler")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.dev" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-Ip": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"cloudflare", map[string]string{"Cf-Connecting-Ip": "192.0.2.9"}, "10.0.0.2:1234", "192.0.2.9"},
		{"remote addr fallback", nil, "10.0.0.2:1234", "10.0.0.2"},
		{"nothing usable", nil, "bogus", "unknown"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/add", nil)
			r.RemoteAddr = c.remote
			for k, v := range c.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != c.want {
				t.Fatalf("ClientIP = %q, want %q", got, c.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	store := ratelimit.NewMemoryStore(2, time.Minute, time.Hour)
	defer store.Stop()

	h := RateLimit(store, "/api/")(okHandler())

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("/api/add"); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	if rec := send("/api/add"); rec.Code != http.StatusOK {
		t.Fatalf("second request status = %d", rec.Code)
	}

	rec := send("/api/add")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("429 response missing Retry-After header")
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("429 body is not JSON: %v", err)
	}
	if body.Success || body.Message == "" {
		t.Fatalf("unexpected 429 body: %+v", body)
	}

	// paths outside the prefix bypass the limiter
	if rec := send("/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("non-API path status = %d", rec.Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, context.DeadlineExceeded
}

func TestRateLimit_FailsOpen(t *testing.T) {
	h := RateLimit(failingLimiter{}, "/api/")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/add", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("limiter backend failure must not reject requests, status = %d", rec.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	mgr := auth.NewJWTManager("test-secret", time.Hour)
	var gotEmail string
	h := RequireAuth(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			gotEmail = claims.Email
		}
	}))

	// no token
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/submissions", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}

	// garbage token
	req := httptest.NewRequest(http.MethodGet, "/api/submissions", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}

	// valid token
	token, _, err := mgr.GenerateToken("admin@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/submissions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", rec.Code)
	}
	if gotEmail != "admin@example.com" {
		t.Fatalf("claims not attached to context, got %q", gotEmail)
	}
}
