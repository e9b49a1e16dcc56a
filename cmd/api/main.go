package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio-api/internal/auth"
	"portfolio-api/internal/contact"
	"portfolio-api/internal/data"
	"portfolio-api/internal/db"
	"portfolio-api/internal/ratelimit"
	"portfolio-api/internal/verify"
)

func main() {
	// Read configuration from environment
	mongoURI := os.Getenv("MONGODB_URI")
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()

	// Initialize the database. A missing connection string does not kill
	// the process: the pipeline then fails each submission with a generic
	// configuration error, which is all an anonymous caller may learn.
	var (
		dbClient *db.Client
		store    contact.Store
		subs     submissionsLister
		health   pinger
	)
	if mongoURI == "" {
		log.Printf("MONGODB_URI not configured; submissions will be rejected")
	} else {
		var err error
		dbClient, err = db.New(ctx, mongoURI)
		if err != nil {
			log.Fatalf("failed to connect to DB: %v", err)
		}
		defer func() {
			_ = dbClient.Close(context.Background())
		}()

		// Ensure indexes exist
		if err := dbClient.CreateIndexes(ctx); err != nil {
			log.Fatalf("failed to create indexes: %v", err)
		}

		submissions := data.NewSubmissionsStore(dbClient.SubmissionsCollection())
		store = submissions
		subs = submissions
		health = dbClient
	}

	// Pick the bot-mitigation variant. reCAPTCHA wins when both are
	// configured; with neither, the reCAPTCHA verifier fails closed.
	var verifier verify.Verifier
	switch {
	case os.Getenv("RECAPTCHA_SECRET_KEY") != "":
		verifier = verify.NewRecaptcha(os.Getenv("RECAPTCHA_SECRET_KEY"))
	case os.Getenv("SECURITY_TEXT") != "":
		verifier = verify.NewSecurityText(os.Getenv("SECURITY_TEXT"))
	default:
		log.Printf("no bot verification configured; all submissions will fail verification")
		verifier = verify.NewRecaptcha("")
	}

	// Build the two rate limiters. They guard different surfaces (the
	// submission pipeline vs. the whole API) and never share a store.
	window := envDuration("RATE_LIMIT_WINDOW", 15*time.Minute)
	formMax := envInt("RATE_LIMIT_MAX", 5)
	apiMax := envInt("API_RATE_LIMIT_MAX", 10)

	var formLimiter, apiLimiter ratelimit.Limiter
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis ping failed: %v", err)
		}
		defer rdb.Close()

		formLimiter = ratelimit.NewRedisStore(rdb, "ratelimit:contact", formMax, window)
		apiLimiter = ratelimit.NewRedisStore(rdb, "ratelimit:api", apiMax, window)
	} else {
		formStore := ratelimit.NewMemoryStore(formMax, window, time.Minute)
		defer formStore.Stop()
		apiStore := ratelimit.NewMemoryStore(apiMax, window, time.Minute)
		defer apiStore.Stop()
		formLimiter = formStore
		apiLimiter = apiStore
	}

	// Admin read surface is optional; all three settings must be present.
	var jwtMgr *auth.JWTManager
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if secret := os.Getenv("JWT_SECRET"); secret != "" && adminEmail != "" && adminHash != "" {
		jwtMgr = auth.NewJWTManager(secret, 24*time.Hour)
	} else if secret != "" || adminEmail != "" || adminHash != "" {
		log.Printf("admin surface partially configured (need JWT_SECRET, ADMIN_EMAIL and ADMIN_PASSWORD_HASH); disabling it")
	}

	svc := contact.NewService(store, verifier, formLimiter)
	srv := newServer(svc, subs, health, jwtMgr, adminEmail, adminHash)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      srv.handler(apiLimiter, os.Getenv("CORS_ORIGIN")),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server exit: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// envInt reads a positive integer setting, falling back to def.
func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", name, v, def)
		return def
	}
	return n
}

// envDuration reads a duration setting ("15m", "1h"), falling back to def.
func envDuration(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", name, v, def)
		return def
	}
	return d
}
