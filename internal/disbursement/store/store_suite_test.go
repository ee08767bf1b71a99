package store_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"faucetgate/internal/disbursement/models"
	"faucetgate/internal/disbursement/ports"
	"faucetgate/internal/disbursement/store"
)

// LogStoreSuite exercises behavior every ports.Store must share. Concrete
// suites embed it and provide newStore.
type LogStoreSuite struct {
	suite.Suite
	newStore func() ports.Store
	store    ports.Store
	base     time.Time
}

func (s *LogStoreSuite) SetupTest() {
	s.store = s.newStore()
	s.base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *LogStoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *LogStoreSuite) record(identity string, outcome models.Outcome, at time.Time) models.Record {
	req := models.Request{Identity: identity, Destination: "0x00000000000000000000000000000000000000aa", Justification: "testing the grant"}
	return models.NewRecord(req, decimal.NewFromInt(10), "0xtx-"+identity, outcome, at)
}

func (s *LogStoreSuite) append(records ...models.Record) {
	for _, r := range records {
		s.Require().NoError(s.store.Append(context.Background(), r))
	}
}

func (s *LogStoreSuite) TestAppendValidation() {
	ctx := context.Background()

	s.Run("empty identity is rejected", func() {
		err := s.store.Append(ctx, s.record("", models.OutcomeSucceeded, s.base))
		s.ErrorIs(err, store.ErrInvalidRecord)
	})

	s.Run("non-positive amount is rejected", func() {
		r := s.record("agent", models.OutcomeSucceeded, s.base)
		r.Amount = decimal.Zero
		s.ErrorIs(s.store.Append(ctx, r), store.ErrInvalidRecord)
	})

	s.Run("unknown outcome is rejected", func() {
		s.ErrorIs(s.store.Append(ctx, s.record("agent", "pending", s.base)), store.ErrInvalidRecord)
	})
}

func (s *LogStoreSuite) TestHasSuccessfulRequestSince() {
	ctx := context.Background()
	s.append(
		s.record("agent-a", models.OutcomeSucceeded, s.base),
		s.record("agent-b", models.OutcomeFailed, s.base),
	)

	s.Run("success after threshold counts", func() {
		ok, err := s.store.HasSuccessfulRequestSince(ctx, "agent-a", s.base.Add(-time.Hour))
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("success exactly at threshold does not count", func() {
		ok, err := s.store.HasSuccessfulRequestSince(ctx, "agent-a", s.base)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("failed attempts never count", func() {
		ok, err := s.store.HasSuccessfulRequestSince(ctx, "agent-b", s.base.Add(-time.Hour))
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("identity match is case sensitive", func() {
		ok, err := s.store.HasSuccessfulRequestSince(ctx, "Agent-A", s.base.Add(-time.Hour))
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("visible immediately after append", func() {
		s.append(s.record("agent-c", models.OutcomeSucceeded, s.base.Add(time.Minute)))
		ok, err := s.store.HasSuccessfulRequestSince(ctx, "agent-c", s.base)
		s.Require().NoError(err)
		s.True(ok)
	})
}

func (s *LogStoreSuite) TestLastSuccessfulRequestTime() {
	ctx := context.Background()

	_, found, err := s.store.LastSuccessfulRequestTime(ctx, "agent-a")
	s.Require().NoError(err)
	s.False(found)

	s.append(
		s.record("agent-a", models.OutcomeSucceeded, s.base),
		s.record("agent-a", models.OutcomeSucceeded, s.base.Add(48*time.Hour)),
		s.record("agent-a", models.OutcomeFailed, s.base.Add(72*time.Hour)),
	)

	last, found, err := s.store.LastSuccessfulRequestTime(ctx, "agent-a")
	s.Require().NoError(err)
	s.True(found)
	s.True(last.Equal(s.base.Add(48*time.Hour)), "got %s", last)
}

func (s *LogStoreSuite) TestAggregateStats() {
	ctx := context.Background()

	s.Run("empty log", func() {
		stats, err := s.store.AggregateStats(ctx)
		s.Require().NoError(err)
		s.Zero(stats.Count)
		s.True(stats.TotalAmountSucceeded.IsZero())
	})

	half := s.record("agent-b", models.OutcomeSucceeded, s.base.Add(time.Second))
	half.Amount = decimal.RequireFromString("0.5")
	s.append(
		s.record("agent-a", models.OutcomeSucceeded, s.base),
		half,
		s.record("agent-a", models.OutcomeFailed, s.base.Add(2*time.Second)),
	)

	s.Run("counts and exact totals", func() {
		stats, err := s.store.AggregateStats(ctx)
		s.Require().NoError(err)
		s.Equal(3, stats.Count)
		s.Equal(2, stats.SucceededCount)
		s.Equal(1, stats.FailedCount)
		s.Equal(2, stats.UniqueIdentities)
		s.True(stats.TotalAmountSucceeded.Equal(decimal.RequireFromString("10.5")), "got %s", stats.TotalAmountSucceeded)
	})

	s.Run("idempotent without writes", func() {
		first, err := s.store.AggregateStats(ctx)
		s.Require().NoError(err)
		second, err := s.store.AggregateStats(ctx)
		s.Require().NoError(err)
		s.Equal(first.Count, second.Count)
		s.True(first.TotalAmountSucceeded.Equal(second.TotalAmountSucceeded))
	})
}

func (s *LogStoreSuite) TestRecent() {
	ctx := context.Background()
	s.append(
		s.record("agent-a", models.OutcomeSucceeded, s.base),
		s.record("agent-b", models.OutcomeFailed, s.base.Add(time.Minute)),
		s.record("agent-c", models.OutcomeSucceeded, s.base.Add(2*time.Minute)),
		s.record("agent-d", models.OutcomeSucceeded, s.base.Add(3*time.Minute)),
	)

	s.Run("succeeded only, newest first, capped", func() {
		recs, err := s.store.Recent(ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(recs, 2)
		s.Equal("agent-d", recs[0].Identity)
		s.Equal("agent-c", recs[1].Identity)
		s.True(recs[0].Amount.Equal(decimal.NewFromInt(10)))
	})

	s.Run("zero limit yields empty", func() {
		recs, err := s.store.Recent(ctx, 0)
		s.Require().NoError(err)
		s.Empty(recs)
	})

	s.Run("justifications cover succeeded records", func() {
		js, err := s.store.SucceededJustifications(ctx)
		s.Require().NoError(err)
		s.Len(js, 3)
	})
}

func (s *LogStoreSuite) TestConcurrentAppends() {
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Append(ctx, s.record("agent-load", models.OutcomeSucceeded, s.base.Add(time.Duration(i)*time.Second)))
			s.NoError(err)
		}()
	}
	wg.Wait()

	stats, err := s.store.AggregateStats(ctx)
	s.Require().NoError(err)
	s.Equal(25, stats.Count)
}
