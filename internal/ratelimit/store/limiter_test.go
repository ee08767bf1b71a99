package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestAllow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
	s := New(2, 3, WithClock(clock.now))

	t.Run("burst then deny", func(t *testing.T) {
		for i := range 3 {
			ok, wait := s.Allow("ip:1.2.3.4")
			require.True(t, ok, "request %d", i)
			assert.Zero(t, wait)
		}
		ok, wait := s.Allow("ip:1.2.3.4")
		assert.False(t, ok)
		assert.InDelta(t, 500*time.Millisecond, wait, float64(time.Millisecond))
	})

	t.Run("keys are independent", func(t *testing.T) {
		ok, _ := s.Allow("ip:5.6.7.8")
		assert.True(t, ok)
	})

	t.Run("refill", func(t *testing.T) {
		clock.advance(500 * time.Millisecond)
		ok, _ := s.Allow("ip:1.2.3.4")
		assert.True(t, ok)
	})
}

func TestCleanup(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
	s := New(1, 1, WithClock(clock.now), WithIdleTTL(time.Minute))

	s.Allow("ip:a")
	clock.advance(30 * time.Second)
	s.Allow("ip:b")
	require.Equal(t, 2, s.Len())

	clock.advance(45 * time.Second)
	assert.Equal(t, 1, s.Cleanup())

	clock.advance(time.Minute)
	assert.Zero(t, s.Cleanup())
}

func TestRunJanitor(t *testing.T) {
	s := New(1, 1, WithIdleTTL(time.Millisecond), WithCleanupEvery(5*time.Millisecond))
	s.Allow("ip:a")

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.RunJanitor(ctx, func(n int) {
			select {
			case swept <- n:
			default:
			}
		})
	}()

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("janitor never swept")
	}
	cancel()
	<-done
	assert.Zero(t, s.Len())
}
