package main

import (
	"context"

	"portfolio-api/internal/auth"
	"portfolio-api/internal/contact"
	"portfolio-api/internal/data"
)

// submissionsLister is the read side of the submissions store, used by the
// admin endpoint.
type submissionsLister interface {
	ListRecent(ctx context.Context, limit int64) ([]*data.Submission, error)
}

// pinger is the piece of the DB client the health endpoint needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the handler dependencies: the submission pipeline plus the
// optional admin read surface.
type Server struct {
	contact *contact.Service
	subs    submissionsLister
	db      pinger
	auth    *auth.JWTManager

	adminEmail string
	adminHash  string
}

// newServer returns a ready-to-use Server wired with its collaborators.
// subs, db and the admin fields may be zero when the deployment lacks the
// matching configuration; the affected routes degrade accordingly.
func newServer(svc *contact.Service, subs submissionsLister, db pinger, authMgr *auth.JWTManager, adminEmail, adminHash string) *Server {
	return &Server{
		contact:    svc,
		subs:       subs,
		db:         db,
		auth:       authMgr,
		adminEmail: adminEmail,
		adminHash:  adminHash,
	}
}

// adminConfigured reports whether the admin surface should be exposed.
func (s *Server) adminConfigured() bool {
	return s.auth != nil && s.adminEmail != "" && s.adminHash != ""
}
