package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"portfolio-api/internal/middleware"
	"portfolio-api/internal/ratelimit"
)

// routes builds the route table. Unmatched methods on a known path get a
// JSON 405, unknown paths a JSON 404 — the API never answers with HTML.
func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/add", s.handleContactSubmit).Methods(http.MethodPost)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	if s.adminConfigured() {
		r.HandleFunc("/api/admin/login", s.handleAdminLogin).Methods(http.MethodPost)
		r.Handle("/api/submissions",
			middleware.RequireAuth(s.auth)(http.HandlerFunc(s.handleListSubmissions)),
		).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Message: "Not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Success: false, Message: "Method not allowed"})
	})

	return r
}

// handler wraps the router with the global middleware chain. CORS runs
// before routing so preflights succeed even for method-mismatched requests;
// the API-wide rate limit sits innermost, just in front of the routes.
func (s *Server) handler(apiLimiter ratelimit.Limiter, corsOrigin string) http.Handler {
	var h http.Handler = s.routes()
	h = middleware.RateLimit(apiLimiter, "/api/")(h)
	h = middleware.CORS(corsOrigin)(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.Logger(h)
	h = middleware.RequestID(h)
	return h
}
