// Package normalize canonicalizes email addresses for storage and comparison.
package normalize

import (
	"regexp"
	"strings"
)

// emailPattern is a pragmatic well-formedness check: one local part, one @,
// and a dotted domain. Deliverability is not this package's problem.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization trims surrounding whitespace,
// lower-cases the address, and applies Gmail's canonicalization rules
// (dots in the local part are ignored, a +tag suffix is dropped, and
// googlemail.com is an alias of gmail.com). Normalizing twice yields the
// same string.
func Email(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))

	at := strings.LastIndex(e, "@")
	if at < 0 {
		return e
	}
	local, domain := e[:at], e[at+1:]

	if domain == "googlemail.com" {
		domain = "gmail.com"
	}
	if domain == "gmail.com" {
		if i := strings.Index(local, "+"); i >= 0 {
			local = local[:i]
		}
		local = strings.ReplaceAll(local, ".", "")
	}

	return local + "@" + domain
}

// Valid reports whether e looks like a well-formed address. Callers are
// expected to normalize first.
func Valid(e string) bool {
	return emailPattern.MatchString(e)
}
