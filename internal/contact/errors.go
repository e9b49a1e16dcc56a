package contact

import (
	"fmt"
	"time"
)

// Kind classifies a submission failure for the HTTP layer. Every error the
// pipeline returns carries exactly one kind; raw driver or transport errors
// never cross the package boundary.
type Kind int

const (
	// KindConfiguration: a required deployment setting is missing. Fatal
	// per-deployment, surfaced generically so nothing leaks about which
	// variable is absent.
	KindConfiguration Kind = iota

	// KindThrottle: the client exceeded its request window. Transient and
	// self-correcting; RetryAfter says when.
	KindThrottle

	// KindValidation: client-correctable input problem with a message safe
	// to display verbatim.
	KindValidation

	// KindVerification: the bot-mitigation check failed or was skipped.
	KindVerification

	// KindPersistence: the store was unreachable or the insert failed.
	KindPersistence
)

// Error is a user-safe submission failure.
type Error struct {
	Kind    Kind
	Message string // safe to show to the caller

	// RetryAfter is set for throttle errors only.
	RetryAfter time.Duration

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func configurationErr(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func throttleErr(msg string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindThrottle, Message: msg, RetryAfter: retryAfter}
}

func validationErr(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func verificationErr(msg string, cause error) *Error {
	return &Error{Kind: KindVerification, Message: msg, cause: cause}
}

func persistenceErr(msg string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, cause: cause}
}
