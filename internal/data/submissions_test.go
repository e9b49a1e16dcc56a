package data

import (
	"context"
	"os"
	"testing"
	"time"

	"portfolio-api/internal/db"
)

func setupDB(t *testing.T) *db.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri)
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}

	// ensure a clean collection in case previous runs left data
	_ = c.SubmissionsCollection().Drop(ctx)

	return c
}

func TestSubmissionsInsertAndList(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	store := NewSubmissionsStore(c.SubmissionsCollection())
	ctx := context.Background()

	first, err := store.Insert(ctx, &Submission{
		FirstName:         "Jo",
		LastName:          "Doe",
		Email:             "john@example.com",
		Message:           "Hello there, this is a test message.",
		CreatedAt:         time.Now().Add(-time.Minute),
		IP:                "203.0.113.7",
		UserAgent:         "integration-test",
		RecaptchaVerified: true,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if first.ID.IsZero() {
		t.Fatal("Insert did not populate the document ID")
	}

	second, err := store.Insert(ctx, &Submission{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.org",
		Message:      "Another perfectly valid message body.",
		CreatedAt:    time.Now(),
		IP:           "unknown",
		UserAgent:    "integration-test",
		SecurityText: "abc",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	subs, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}
	// newest first
	if subs[0].ID != second.ID || subs[1].ID != first.ID {
		t.Fatalf("ListRecent order wrong: got %v then %v", subs[0].Email, subs[1].Email)
	}
	if !subs[1].RecaptchaVerified {
		t.Fatal("expected recaptchaVerified to round-trip")
	}
	if subs[0].SecurityText != "abc" {
		t.Fatalf("expected securitytext to round-trip, got %q", subs[0].SecurityText)
	}
}
