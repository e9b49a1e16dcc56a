package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeSiteVerify stands in for Google's siteverify endpoint and returns a
// canned JSON body regardless of the posted token.
func fakeSiteVerify(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST to siteverify, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("siteverify form parse: %v", err)
		}
		if r.PostForm.Get("secret") == "" || r.PostForm.Get("response") == "" {
			t.Error("siteverify called without secret or response")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func newTestRecaptcha(secret, verifyURL string) *Recaptcha {
	r := NewRecaptcha(secret)
	r.verifyURL = verifyURL
	return r
}

func TestRecaptcha_HighScorePasses(t *testing.T) {
	srv := fakeSiteVerify(t, `{"success":true,"score":0.9}`)
	defer srv.Close()

	r := newTestRecaptcha("secret", srv.URL)
	if err := r.Verify(context.Background(), "token"); err != nil {
		t.Fatalf("expected score 0.9 to pass, got %v", err)
	}
}

func TestRecaptcha_LowScoreRejected(t *testing.T) {
	srv := fakeSiteVerify(t, `{"success":true,"score":0.3}`)
	defer srv.Close()

	r := newTestRecaptcha("secret", srv.URL)
	if err := r.Verify(context.Background(), "token"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified for score 0.3, got %v", err)
	}
}

func TestRecaptcha_V2SuccessWithoutScore(t *testing.T) {
	srv := fakeSiteVerify(t, `{"success":true}`)
	defer srv.Close()

	r := newTestRecaptcha("secret", srv.URL)
	if err := r.Verify(context.Background(), "token"); err != nil {
		t.Fatalf("expected bare success to pass, got %v", err)
	}
}

func TestRecaptcha_UpstreamFailure(t *testing.T) {
	srv := fakeSiteVerify(t, `{"success":false,"error-codes":["invalid-input-response"]}`)
	defer srv.Close()

	r := newTestRecaptcha("secret", srv.URL)
	if err := r.Verify(context.Background(), "token"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
}

func TestRecaptcha_MissingToken(t *testing.T) {
	r := NewRecaptcha("secret")
	if err := r.Verify(context.Background(), ""); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestRecaptcha_MissingSecretFailsClosed(t *testing.T) {
	// no secret configured: tokens must be rejected, not waved through
	r := NewRecaptcha("")
	if err := r.Verify(context.Background(), "token"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified with missing secret, got %v", err)
	}
}

func TestSecurityText(t *testing.T) {
	s := NewSecurityText("ABC")

	if err := s.Verify(context.Background(), "abc"); err != nil {
		t.Fatalf("expected case-insensitive match to pass, got %v", err)
	}
	if err := s.Verify(context.Background(), " ABC "); err != nil {
		t.Fatalf("expected trimmed match to pass, got %v", err)
	}
	if err := s.Verify(context.Background(), "xyz"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified for wrong answer, got %v", err)
	}
	if err := s.Verify(context.Background(), ""); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing for empty answer, got %v", err)
	}
}
