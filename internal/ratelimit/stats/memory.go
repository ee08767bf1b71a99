// Package stats records throttle decisions for operators.
package stats

import (
	"context"
	"maps"
	"sync"

	"faucetgate/internal/ratelimit/models"
)

// Recorder persists decisions. Callers treat errors as best-effort.
type Recorder interface {
	Record(ctx context.Context, d models.Decision) error
}

// MemoryStore keeps counters in process. It never expires anything.
type MemoryStore struct {
	mu      sync.Mutex
	total   models.Counters
	byRoute map[string]models.Counters
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byRoute: make(map[string]models.Counters)}
}

func (s *MemoryStore) Record(_ context.Context, d models.Decision) error {
	route := routeField(d)

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byRoute[route]
	if d.Allowed {
		s.total.Allowed++
		c.Allowed++
	} else {
		s.total.Denied++
		c.Denied++
	}
	s.byRoute[route] = c
	return nil
}

func (s *MemoryStore) Total() models.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStore) ByRoute() map[string]models.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.byRoute)
}

func routeField(d models.Decision) string {
	route := d.Route
	if route == "" {
		route = "unmatched"
	}
	if d.Method == "" {
		return route
	}
	return d.Method + " " + route
}
