// Package contact implements the submission intake pipeline: one inbound
// contact-form request is rate-checked, shape-checked, bot-verified,
// sanitized, re-validated and persisted as exactly one document — or
// rejected with a specific, user-safe reason. Server-side checks never
// trust whatever validation the form did in the browser.
package contact

import (
	"context"
	"errors"
	"html"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"portfolio-api/internal/data"
	"portfolio-api/internal/normalize"
	"portfolio-api/internal/ratelimit"
	"portfolio-api/internal/verify"
)

// Request is the decoded POST /api/add body. All fields arrive raw from the
// client; nothing here is trusted.
type Request struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Message   string `json:"message"`

	// One of the two, depending on the deployed verification variant.
	RecaptchaToken string `json:"recaptchaToken"`
	SecurityText   string `json:"securitytext"`
}

// Store persists accepted submissions.
type Store interface {
	Insert(ctx context.Context, sub *data.Submission) (*data.Submission, error)
}

// Length bounds applied after sanitization. Escaping can grow a string and
// trimming can shrink it, so these are checked on the final form.
const (
	nameMinLen    = 2
	nameMaxLen    = 50
	messageMinLen = 10
	messageMaxLen = 1000
)

// Service orchestrates one submission. It is stateless across calls; the
// only shared state it touches lives behind the injected limiter and store.
type Service struct {
	store    Store
	verifier verify.Verifier
	limiter  ratelimit.Limiter
}

// NewService wires the pipeline's collaborators. store may be nil when the
// persistence connection string was absent at startup; Submit then fails
// every request with a configuration error instead of crashing the process.
func NewService(store Store, verifier verify.Verifier, limiter ratelimit.Limiter) *Service {
	return &Service{store: store, verifier: verifier, limiter: limiter}
}

// Submit runs the ordered pipeline stages, short-circuiting on the first
// failure. clientID is the resolved best-effort client identifier and
// userAgent the raw header value; both are recorded on the stored document.
// A nil return means exactly one document was persisted.
func (s *Service) Submit(ctx context.Context, req Request, clientID, userAgent string) error {
	// availability: the store handle only exists if the deployment was
	// configured with a connection string.
	if s.store == nil || s.verifier == nil {
		return configurationErr("Service configuration error")
	}

	// rate: one window per client, independent of the global API limiter.
	dec, err := s.limiter.Allow(ctx, clientID)
	if err != nil {
		// the limiter is best-effort abuse damping; if its backing store
		// is down we let the request through rather than lock everyone out
		log.Printf("rate limiter unavailable, allowing request: %v", err)
	} else if !dec.Allowed {
		return throttleErr("Too many requests. Please try again later.", dec.RetryAfter)
	}

	// shape: all text fields present. The securitytext variant treats its
	// challenge answer as a fifth required field.
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Message == "" {
		return validationErr("All fields are required")
	}
	if s.verifier.Kind() == verify.KindSecurityText && req.SecurityText == "" {
		return validationErr("All fields are required")
	}

	// verification: confirmed by the external verifier before any further
	// work; a flood of bot traffic should not reach sanitization or Mongo.
	if err := s.verifyToken(ctx, req); err != nil {
		return err
	}

	// sanitize: trim, escape HTML-sensitive characters, normalize email.
	firstName := html.EscapeString(strings.TrimSpace(req.FirstName))
	lastName := html.EscapeString(strings.TrimSpace(req.LastName))
	message := html.EscapeString(strings.TrimSpace(req.Message))
	email := normalize.Email(req.Email)

	// re-validate: sanitization can shrink a value below its minimum (all
	// whitespace trims to nothing), so bounds are checked on the final form.
	if !normalize.Valid(email) {
		return validationErr("Invalid email address")
	}
	if n := utf8.RuneCountInString(firstName); n < nameMinLen || n > nameMaxLen {
		return validationErr("First name must be between 2 and 50 characters")
	}
	if n := utf8.RuneCountInString(lastName); n < nameMinLen || n > nameMaxLen {
		return validationErr("Last name must be between 2 and 50 characters")
	}
	if n := utf8.RuneCountInString(message); n < messageMinLen || n > messageMaxLen {
		return validationErr("Message must be between 10 and 1000 characters")
	}

	// persist: one atomic insert; driver errors are logged server-side and
	// reported generically.
	sub := &data.Submission{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Message:   message,
		CreatedAt: time.Now(),
		IP:        clientID,
		UserAgent: userAgent,
	}
	switch s.verifier.Kind() {
	case verify.KindRecaptcha:
		sub.RecaptchaVerified = true
	case verify.KindSecurityText:
		sub.SecurityText = html.EscapeString(strings.TrimSpace(req.SecurityText))
	}

	if _, err := s.store.Insert(ctx, sub); err != nil {
		log.Printf("submission insert failed: %v", err)
		return persistenceErr("Service temporarily unavailable", err)
	}
	return nil
}

// verifyToken picks the token field matching the deployed variant and maps
// the verifier's outcome onto the user-facing error taxonomy.
func (s *Service) verifyToken(ctx context.Context, req Request) error {
	switch s.verifier.Kind() {
	case verify.KindSecurityText:
		if err := s.verifier.Verify(ctx, req.SecurityText); err != nil {
			return verificationErr("Security check failed", err)
		}
	default:
		err := s.verifier.Verify(ctx, req.RecaptchaToken)
		switch {
		case errors.Is(err, verify.ErrTokenMissing):
			return verificationErr("reCAPTCHA verification is required", err)
		case err != nil:
			return verificationErr("reCAPTCHA verification failed", err)
		}
	}
	return nil
}
