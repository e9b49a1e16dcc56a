// Package data provides DB models and stores.
package data

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Submission maps to the form_submissions collection. Every text field has
// already been sanitized and validated by the intake pipeline before a
// document is constructed; this package never stores raw client input.
//
// RecaptchaVerified and SecurityText are mutually exclusive: which one is
// set depends on the deployed bot-mitigation variant.
type Submission struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FirstName string        `bson:"firstName" json:"firstName"`
	LastName  string        `bson:"lastName" json:"lastName"`
	Email     string        `bson:"email" json:"email"`
	Message   string        `bson:"message" json:"message"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`

	// IP is the best-effort client identifier resolved from forwarded-IP
	// headers; "unknown" when nothing usable was present.
	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"userAgent" json:"userAgent"`

	RecaptchaVerified bool   `bson:"recaptchaVerified,omitempty" json:"recaptchaVerified,omitempty"`
	SecurityText      string `bson:"securitytext,omitempty" json:"securitytext,omitempty"`
}
