package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"portfolio-api/internal/auth"
	"portfolio-api/internal/contact"
	"portfolio-api/internal/data"
	"portfolio-api/internal/middleware"
	"portfolio-api/internal/normalize"
)

// apiResponse is the uniform body for every intake endpoint reply.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// handleContactSubmit runs one contact-form submission through the intake
// pipeline and maps its error taxonomy onto HTTP statuses.
func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	// contact forms are small; anything bigger is not a contact form
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req contact.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid request body"})
		return
	}

	clientID := middleware.ClientIP(r)
	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = "unknown"
	}

	if err := s.contact.Submit(r.Context(), req, clientID, userAgent); err != nil {
		s.writeSubmitError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Form submitted successfully"})
}

// writeSubmitError translates a pipeline failure into a response. Only the
// user-safe message crosses the wire; the raw error stays in the log.
func (s *Server) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	var subErr *contact.Error
	if !errors.As(err, &subErr) {
		log.Printf("unexpected submit error rid=%s: %v", middleware.RequestIDFromContext(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Service temporarily unavailable"})
		return
	}

	status := http.StatusBadRequest
	switch subErr.Kind {
	case contact.KindConfiguration, contact.KindPersistence:
		status = http.StatusInternalServerError
	case contact.KindThrottle:
		status = http.StatusTooManyRequests
		secs := int(subErr.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	writeJSON(w, status, apiResponse{Success: false, Message: subErr.Message})
}

// handleHealth reports liveness, including reachability of the store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiResponse{Success: false, Message: "Service unavailable"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		log.Printf("health ping failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, apiResponse{Success: false, Message: "Service unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleAdminLogin exchanges the configured admin credentials for a JWT.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid request body"})
		return
	}

	// one generic message for every failure mode: no hints about which
	// part of the credential pair was wrong
	if normalize.Email(req.Email) != normalize.Email(s.adminEmail) ||
		auth.CheckPassword(s.adminHash, req.Password) != nil {
		writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	token, expiresAt, err := s.auth.GenerateToken(normalize.Email(req.Email))
	if err != nil {
		log.Printf("token generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Service temporarily unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, ExpiresAt: expiresAt})
}

type listResponse struct {
	Success     bool               `json:"success"`
	Submissions []*data.Submission `json:"submissions"`
}

// handleListSubmissions returns the newest stored submissions. Guarded by
// RequireAuth in the route table.
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := int64(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid limit"})
			return
		}
		if n > 200 {
			n = 200
		}
		limit = n
	}

	subs, err := s.subs.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("list submissions failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Service temporarily unavailable"})
		return
	}
	if subs == nil {
		subs = []*data.Submission{}
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Submissions: subs})
}
