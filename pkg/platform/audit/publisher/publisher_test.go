package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "faucetgate/pkg/platform/audit"
	"faucetgate/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Subject: "agent-7",
		Action:  string(audit.EventDisbursementSucceeded),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "agent-7")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventDisbursementSucceeded), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			Subject: "agent-7",
			Action:  string(audit.EventCooldownRejected),
		}))
	}
	pub.Close()

	events, err := store.ListBySubject(context.Background(), "agent-7")
	require.NoError(t, err)
	assert.Len(t, events, 10, "close drains the queue")

	err = pub.Emit(context.Background(), audit.Event{Subject: "agent-7"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_BufferFullNeverBlocks(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{
				Subject: "agent-7",
				Action:  string(audit.EventIngressThrottled),
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_Timestamps(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	t.Run("unset timestamp is stamped", func(t *testing.T) {
		before := time.Now()
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "a", Action: "x"}))
		after := time.Now()

		events, err := pub.List(context.Background(), "a")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.Before(before))
		assert.False(t, events[0].Timestamp.After(after))
	})

	t.Run("explicit timestamp is preserved", func(t *testing.T) {
		at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "b", Action: "x", Timestamp: at}))

		events, err := pub.Recent(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "a", events[0].Subject, "newest event first")

		events, err = pub.List(context.Background(), "b")
		require.NoError(t, err)
		assert.Equal(t, at, events[0].Timestamp)
	})
}
