package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"faucetgate/internal/disbursement/models"
)

// InMemoryStore keeps the log in process memory. It is used in tests and for
// throwaway local runs; records do not survive a restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.Record
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, record models.Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *InMemoryStore) HasSuccessfulRequestSince(_ context.Context, identity string, threshold time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.Identity == identity && r.Succeeded() && r.Timestamp.After(threshold) {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) LastSuccessfulRequestTime(_ context.Context, identity string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last time.Time
	found := false
	for _, r := range s.records {
		if r.Identity == identity && r.Succeeded() && (!found || r.Timestamp.After(last)) {
			last = r.Timestamp
			found = true
		}
	}
	return last, found, nil
}

func (s *InMemoryStore) AggregateStats(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := models.Stats{TotalAmountSucceeded: decimal.Zero}
	identities := make(map[string]struct{})
	for _, r := range s.records {
		stats.Count++
		identities[r.Identity] = struct{}{}
		if r.Succeeded() {
			stats.SucceededCount++
			stats.TotalAmountSucceeded = stats.TotalAmountSucceeded.Add(r.Amount)
		} else {
			stats.FailedCount++
		}
	}
	stats.UniqueIdentities = len(identities)
	return stats, nil
}

func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]models.Record, error) {
	out := []models.Record{}
	if limit <= 0 {
		return out, nil
	}
	s.mu.RLock()
	for _, r := range s.records {
		if r.Succeeded() {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) SucceededJustifications(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []string{}
	for _, r := range s.records {
		if r.Succeeded() {
			out = append(out, r.Justification)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Ping(context.Context) error { return nil }

func (s *InMemoryStore) Close() error { return nil }
