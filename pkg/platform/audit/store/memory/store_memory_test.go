package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "faucetgate/pkg/platform/audit"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestListRecent() {
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, subject := range []string{"agent-a", "agent-b", "agent-a"} {
		s.Require().NoError(s.store.Append(ctx, audit.Event{
			Subject:   subject,
			Action:    string(audit.EventCooldownRejected),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	s.Run("newest first across subjects", func() {
		events, err := s.store.ListRecent(ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal(base.Add(2*time.Minute), events[0].Timestamp)
		s.Equal("agent-b", events[1].Subject)
	})

	s.Run("non-positive limit returns nothing", func() {
		events, err := s.store.ListRecent(ctx, 0)
		s.Require().NoError(err)
		s.Empty(events)
	})

	s.Run("per subject listing keeps insertion order", func() {
		events, err := s.store.ListBySubject(ctx, "agent-a")
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.True(events[0].Timestamp.Before(events[1].Timestamp))
	})

	s.Run("clear empties the store", func() {
		s.store.Clear()
		events, err := s.store.ListRecent(ctx, 10)
		s.Require().NoError(err)
		s.Empty(events)
	})
}
