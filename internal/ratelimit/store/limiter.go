// Package store keeps one token bucket per key.
package store

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterStore hands out a rate.Limiter per key and forgets keys idle
// longer than the TTL.
type LimiterStore struct {
	mu           sync.Mutex
	entries      map[string]*entry
	limit        rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type entry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type Option func(*LimiterStore)

func WithIdleTTL(d time.Duration) Option {
	return func(s *LimiterStore) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

func WithCleanupEvery(d time.Duration) Option {
	return func(s *LimiterStore) { s.cleanupEvery = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *LimiterStore) { s.now = now }
}

// New returns a store refilling rps tokens per second up to burst.
func New(rps float64, burst int, opts ...Option) *LimiterStore {
	if burst < 1 {
		burst = 1
	}
	s := &LimiterStore{
		entries:      make(map[string]*entry),
		limit:        rate.Limit(rps),
		burst:        burst,
		idleTTL:      10 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow takes a token for key. When none is left it reports how long until
// one is.
func (s *LimiterStore) Allow(key string) (bool, time.Duration) {
	now := s.now()
	lim := s.get(key, now)
	if lim.AllowN(now, 1) {
		return true, 0
	}
	if s.limit <= 0 {
		return false, time.Duration(math.MaxInt64)
	}
	deficit := 1 - lim.TokensAt(now)
	wait := time.Duration(deficit / float64(s.limit) * float64(time.Second))
	return false, max(wait, time.Millisecond)
}

func (s *LimiterStore) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(s.limit, s.burst)
	s.entries[key] = &entry{lim: lim, lastSeen: now}
	return lim
}

// Len returns the number of tracked keys.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops keys idle longer than the TTL and returns how many remain.
func (s *LimiterStore) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
	return len(s.entries)
}

// RunJanitor cleans up periodically until ctx is done. onSweep, if set,
// receives the remaining key count after each pass.
func (s *LimiterStore) RunJanitor(ctx context.Context, onSweep func(remaining int)) {
	if s.cleanupEvery <= 0 {
		<-ctx.Done()
		return
	}
	t := time.NewTicker(s.cleanupEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			remaining := s.Cleanup()
			if onSweep != nil {
				onSweep(remaining)
			}
		}
	}
}
