// Package verify implements the bot-mitigation check for contact-form
// submissions. Two interchangeable verifiers exist: a score-based reCAPTCHA
// check against Google's siteverify endpoint, and a static security-text
// challenge. Deployment configuration selects exactly one.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Kind names the deployed verification variant; the pipeline uses it to
// decide which field to record on the stored submission.
type Kind string

const (
	KindRecaptcha    Kind = "recaptcha"
	KindSecurityText Kind = "securitytext"
)

var (
	// ErrTokenMissing means the client sent no verification token at all.
	ErrTokenMissing = errors.New("verification token missing")

	// ErrNotVerified means the token was present but did not pass the check.
	ErrNotVerified = errors.New("verification failed")
)

// Verifier checks a client-supplied bot-mitigation token. A nil error means
// the submission may proceed.
type Verifier interface {
	Verify(ctx context.Context, token string) error
	Kind() Kind
}

const (
	siteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

	// scoreThreshold is the acceptance cutoff for reCAPTCHA v3 scores
	// (0.0 = almost certainly a bot, 1.0 = almost certainly human).
	scoreThreshold = 0.5
)

// siteVerifyResponse mirrors the JSON returned by the siteverify endpoint.
type siteVerifyResponse struct {
	Success     bool     `json:"success"`
	Score       *float64 `json:"score"` // only present for v3 keys
	Hostname    string   `json:"hostname"`
	ChallengeTS string   `json:"challenge_ts"`
	ErrorCodes  []string `json:"error-codes"`
}

// Recaptcha validates tokens against Google's siteverify API. A missing
// secret fails closed: every token is rejected rather than waved through.
type Recaptcha struct {
	secret    string
	verifyURL string
	client    *http.Client

	// outbound caps calls to the upstream verifier so a flood of junk
	// tokens cannot turn into a flood of siteverify requests.
	outbound *rate.Limiter
}

// NewRecaptcha returns a verifier using the given secret key.
func NewRecaptcha(secret string) *Recaptcha {
	return &Recaptcha{
		secret:    secret,
		verifyURL: siteVerifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		outbound:  rate.NewLimiter(rate.Limit(10), 20),
	}
}

// Kind implements Verifier.
func (r *Recaptcha) Kind() Kind { return KindRecaptcha }

// Verify posts the token to siteverify and applies the score threshold.
// Upstream or transport failures are logged and reported as ErrNotVerified;
// the caller never learns internal detail.
func (r *Recaptcha) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenMissing
	}
	if r.secret == "" {
		log.Printf("recaptcha secret key not configured; failing verification closed")
		return ErrNotVerified
	}

	if err := r.outbound.Wait(ctx); err != nil {
		return ErrNotVerified
	}

	form := url.Values{}
	form.Set("secret", r.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("recaptcha verification error: %v", err)
		return ErrNotVerified
	}
	defer resp.Body.Close()

	var body siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("recaptcha response decode error: %v", err)
		return ErrNotVerified
	}

	if !body.Success {
		log.Printf("recaptcha verification failed: %v", body.ErrorCodes)
		return ErrNotVerified
	}

	// v3 keys return a score; v2 keys only report success.
	if body.Score != nil && *body.Score <= scoreThreshold {
		return ErrNotVerified
	}
	return nil
}

// SecurityText is the static-challenge variant: the form asks a fixed
// question and the answer is compared case-insensitively. Weak against a
// determined bot, kept for deployments without reCAPTCHA keys.
type SecurityText struct {
	answer string
}

// NewSecurityText returns a verifier expecting the given answer.
func NewSecurityText(answer string) *SecurityText {
	return &SecurityText{answer: strings.TrimSpace(answer)}
}

// Kind implements Verifier.
func (s *SecurityText) Kind() Kind { return KindSecurityText }

// Verify compares the submitted text with the configured answer.
func (s *SecurityText) Verify(_ context.Context, token string) error {
	if token == "" {
		return ErrTokenMissing
	}
	if s.answer == "" || !strings.EqualFold(strings.TrimSpace(token), s.answer) {
		return ErrNotVerified
	}
	return nil
}
