// internal/limit/limit.go
//
// Per-user token buckets for command rate limiting.
//
// Responsibilities:
//   - Hand out one golang.org/x/time/rate limiter per user, created lazily.
//   - Track last use so idle limiters can be dropped by Cleanup.
//
// Notes:
//   - Shared by the HTTP and bot hosts; the engine itself is not limited.

package limit

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/worduel/internal/game"
)

type entry struct {
	lim  *rate.Limiter
	last time.Time
}

// Registry maps users to their limiters.
type Registry struct {
	mu      sync.RWMutex
	entries map[game.UserID]*entry
	rps     rate.Limit
	burst   int
	now     func() time.Time
}

// New creates a registry allowing rps sustained requests with bursts of
// burst. Non-positive values fall back to 1.
func New(rps float64, burst int) *Registry {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Registry{
		entries: make(map[game.UserID]*entry),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// getLimiter returns user's limiter, creating it on first use.
func (r *Registry) getLimiter(user game.UserID, now time.Time) *rate.Limiter {
	r.mu.RLock()
	e, ok := r.entries[user]
	r.mu.RUnlock()
	if ok {
		r.mu.Lock()
		e.last = now
		r.mu.Unlock()
		return e.lim
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok = r.entries[user]; ok {
		e.last = now
		return e.lim
	}
	e = &entry{lim: rate.NewLimiter(r.rps, r.burst), last: now}
	r.entries[user] = e
	return e.lim
}

// Allow reports whether user may act now, consuming a token if so.
func (r *Registry) Allow(user game.UserID) bool {
	now := r.now()
	return r.getLimiter(user, now).AllowN(now, 1)
}

// Cleanup forgets limiters idle for longer than maxIdle.
func (r *Registry) Cleanup(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for u, e := range r.entries {
		if e.last.Before(cutoff) {
			delete(r.entries, u)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("cleaned up idle rate limiters")
	}
	return removed
}

// Len is the number of tracked users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
