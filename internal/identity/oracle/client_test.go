package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := New("  ", time.Second)
		require.Error(t, err)
	})

	t.Run("rejects relative URL", func(t *testing.T) {
		_, err := New("registry.local", time.Second)
		require.Error(t, err)
	})
}

func TestLookup(t *testing.T) {
	var (
		mu               sync.Mutex
		gotPath, gotAuth string
	)
	last := func() (string, string) {
		mu.Lock()
		defer mu.Unlock()
		return gotPath, gotAuth
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()
		switch r.URL.Path {
		case "/api/v1/users/Agent1":
			_, _ = w.Write([]byte(`{"id": 42, "name": "Agent1"}`))
		case "/api/v1/users/NameOnly":
			_, _ = w.Write([]byte(`{"name": "NameOnly"}`))
		case "/api/v1/users/Empty":
			_, _ = w.Write([]byte(`{"karma": 3}`))
		case "/api/v1/users/Garbled":
			_, _ = w.Write([]byte(`<html>`))
		case "/api/v1/users/Busy":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/api/v1/users/Down":
			w.WriteHeader(http.StatusBadGateway)
		case "/api/v1/users/Locked":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := New(srv.URL+"/api/v1/", 2*time.Second, WithAPIKey("secret"))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("registered identity", func(t *testing.T) {
		profile, err := client.Lookup(ctx, "Agent1")
		require.NoError(t, err)
		assert.Equal(t, "42", profile.ID)
		assert.Equal(t, "Agent1", profile.Name)
		_, auth := last()
		assert.Equal(t, "Bearer secret", auth)
	})

	t.Run("name alone is enough", func(t *testing.T) {
		profile, err := client.Lookup(ctx, "NameOnly")
		require.NoError(t, err)
		assert.Equal(t, "NameOnly", profile.Name)
	})

	t.Run("lookup is case-sensitive", func(t *testing.T) {
		_, err := client.Lookup(ctx, "agent1")
		assert.True(t, IsNotFound(err))
	})

	t.Run("identity is path-escaped", func(t *testing.T) {
		_, _ = client.Lookup(ctx, "a/b c")
		path, _ := last()
		assert.Equal(t, "/api/v1/users/a%2Fb%20c", path)
	})

	t.Run("status taxonomy", func(t *testing.T) {
		cases := map[string]ErrorCategory{
			"Empty":   ErrorNotFound,
			"Garbled": ErrorBadData,
			"Busy":    ErrorRateLimited,
			"Down":    ErrorOutage,
			"Locked":  ErrorAuthentication,
			"Nobody":  ErrorNotFound,
		}
		for identity, want := range cases {
			_, err := client.Lookup(ctx, identity)
			require.Error(t, err, identity)
			assert.Equal(t, want, GetCategory(err), identity)
		}
	})

	t.Run("retryable categories", func(t *testing.T) {
		_, err := client.Lookup(ctx, "Down")
		assert.True(t, IsRetryable(err))
		_, err = client.Lookup(ctx, "Nobody")
		assert.False(t, IsRetryable(err))
	})
}

func TestLookup_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	client, err := New(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)

	_, err = client.Lookup(context.Background(), "Agent1")
	require.Error(t, err)
	assert.Equal(t, ErrorTimeout, GetCategory(err))
}

func TestLookup_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := New(base, time.Second)
	require.NoError(t, err)

	_, err = client.Lookup(context.Background(), "Agent1")
	assert.Equal(t, ErrorOutage, GetCategory(err))
}
