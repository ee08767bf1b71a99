package cooldown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"faucetgate/internal/disbursement/models"
	"faucetgate/internal/disbursement/store"
	"faucetgate/pkg/platform/sentinel"
	"faucetgate/pkg/requestcontext"
)

type GateSuite struct {
	suite.Suite
	store *store.InMemoryStore
	gate  *Gate
	paid  time.Time
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.store = store.NewInMemory()
	var err error
	s.gate, err = New(s.store)
	s.Require().NoError(err)

	s.paid = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	rec := models.NewRecord(models.Request{Identity: "agent-x", Destination: "0xabc", Justification: "j"},
		decimal.NewFromInt(10), "0xtx", models.OutcomeSucceeded, s.paid)
	s.Require().NoError(s.store.Append(context.Background(), rec))
}

func (s *GateSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *GateSuite) TestNew() {
	_, err := New(nil)
	s.ErrorContains(err, "ledger store is required")
}

func (s *GateSuite) TestIsEligible() {
	window := 24 * time.Hour

	s.Run("inside the window is blocked", func() {
		ok, err := s.gate.IsEligible(s.at(s.paid.Add(time.Hour)), "agent-x", window)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("one nanosecond before the boundary is blocked", func() {
		ok, err := s.gate.IsEligible(s.at(s.paid.Add(window-time.Nanosecond)), "agent-x", window)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("exactly window later is eligible", func() {
		ok, err := s.gate.IsEligible(s.at(s.paid.Add(window)), "agent-x", window)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("after the window is eligible", func() {
		ok, err := s.gate.IsEligible(s.at(s.paid.Add(25*time.Hour)), "agent-x", window)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("unknown identity is eligible", func() {
		ok, err := s.gate.IsEligible(s.at(s.paid), "agent-y", window)
		s.Require().NoError(err)
		s.True(ok)
	})
}

func (s *GateSuite) TestRetryAt() {
	last, retry, ok, err := s.gate.RetryAt(context.Background(), "agent-x", 24*time.Hour)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(s.paid, last)
	s.Equal(s.paid.Add(24*time.Hour), retry)

	_, _, ok, err = s.gate.RetryAt(context.Background(), "never-paid", 24*time.Hour)
	s.Require().NoError(err)
	s.False(ok)
}

type failingReader struct{}

func (failingReader) HasSuccessfulRequestSince(context.Context, string, time.Time) (bool, error) {
	return false, sentinel.ErrUnavailable
}

func (failingReader) LastSuccessfulRequestTime(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, sentinel.ErrUnavailable
}

func (s *GateSuite) TestStoreFailurePropagates() {
	gate, err := New(failingReader{})
	s.Require().NoError(err)
	ok, err := gate.IsEligible(context.Background(), "agent-x", time.Hour)
	s.False(ok)
	s.True(errors.Is(err, sentinel.ErrUnavailable))
}
