// Package ratelimit bounds how many requests a single client may issue
// within a trailing time window (sliding window, not fixed buckets).
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of a single limiter check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// RetryAfter hints when capacity frees up again. Only meaningful
	// when Allowed is false; callers surface it as a Retry-After header.
	RetryAfter time.Duration
}

// Limiter is the contract the submission pipeline and the API middleware
// depend on. Implementations must make the prune/count/append sequence for
// a given key atomic: two concurrent requests from the same client must not
// both observe "below limit" and both record themselves.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryStore is a process-local sliding-window limiter. Each key maps to
// the ordered arrival times of its still-in-window requests; stale entries
// are pruned lazily on access and idle keys are swept by a janitor
// goroutine. State does not survive a restart — acceptable for
// abuse-damping on a single instance, not for strict quota enforcement.
type MemoryStore struct {
	window time.Duration
	max    int

	mu      sync.Mutex
	clients map[string][]time.Time

	// now is swappable so tests can move through the window without sleeping.
	now    func() time.Time
	stopCh chan struct{}
}

// NewMemoryStore creates a limiter allowing max requests per key inside the
// trailing window. cleanupInterval controls how often idle keys are swept.
func NewMemoryStore(max int, window, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		window:  window,
		max:     max,
		clients: map[string][]time.Time{},
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go s.janitor(cleanupInterval)
	return s
}

// Allow prunes expired timestamps for key, then either records the request
// (allowed) or rejects without recording. Never returns an error.
func (s *MemoryStore) Allow(_ context.Context, key string) (Decision, error) {
	now := s.now()
	cutoff := now.Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop everything that slid out of the window. Timestamps are appended
	// in arrival order, so the slice stays sorted and we can cut at the
	// first still-valid entry.
	stamps := s.clients[key]
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	stamps = stamps[i:]

	if len(stamps) >= s.max {
		s.clients[key] = stamps
		// The oldest in-window request decides when a slot opens up.
		return Decision{Allowed: false, RetryAfter: stamps[0].Add(s.window).Sub(now)}, nil
	}

	s.clients[key] = append(stamps, now)
	return Decision{Allowed: true}, nil
}

// janitor periodically removes keys whose every timestamp has expired, so
// one-off clients don't accumulate forever.
func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := s.now().Add(-s.window)
			s.mu.Lock()
			for k, stamps := range s.clients {
				if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
					delete(s.clients, k)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the janitor goroutine (useful for tests).
func (s *MemoryStore) Stop() {
	close(s.stopCh)
}
