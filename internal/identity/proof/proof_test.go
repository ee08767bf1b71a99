package proof

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrusted(t *testing.T) {
	c := New("Moltbook.com", time.Second)

	assert.Equal(t, "moltbook.com", c.TrustedDomain())
	assert.True(t, c.Trusted("moltbook.com"))
	assert.True(t, c.Trusted("www.MOLTBOOK.com"))
	assert.True(t, c.Trusted("moltbook.com."))
	assert.False(t, c.Trusted("evilmoltbook.com"))
	assert.False(t, c.Trusted("moltbook.com.evil.io"))
	assert.False(t, c.Trusted(""))
}

func TestNew_DefaultDomain(t *testing.T) {
	assert.Equal(t, DefaultTrustedDomain, New("", 0).TrustedDomain())
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/post/1":
			_, _ = w.Write([]byte("<html><p>Hello from AGENT1, requesting funds</p></html>"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 4096) + "Agent1"))
		case "/away":
			http.Redirect(w, r, "http://localhost:1/post/1", http.StatusFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	// httptest listens on 127.0.0.1, so trust that host for these cases
	c := New("127.0.0.1", 2*time.Second, WithMaxBodyBytes(1024))
	ctx := context.Background()

	t.Run("mention matches case-insensitively", func(t *testing.T) {
		ok, err := c.Check(ctx, srv.URL+"/post/1", "agent1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("absent mention", func(t *testing.T) {
		ok, err := c.Check(ctx, srv.URL+"/post/1", "Agent2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("body beyond the cap is ignored", func(t *testing.T) {
		ok, err := c.Check(ctx, srv.URL+"/big", "Agent1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		ok, err := c.Check(ctx, srv.URL+"/missing", "Agent1")
		require.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("redirect off the trusted domain is refused", func(t *testing.T) {
		ok, err := c.Check(ctx, srv.URL+"/away", "Agent1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUntrustedHost))
		assert.False(t, ok)
	})

	t.Run("untrusted host is never fetched", func(t *testing.T) {
		ok, err := New("moltbook.com", time.Second).Check(ctx, srv.URL+"/post/1", "Agent1")
		assert.ErrorIs(t, err, ErrUntrustedHost)
		assert.False(t, ok)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := c.Check(ctx, "file:///etc/passwd", "Agent1")
		require.Error(t, err)
	})

	t.Run("empty identity", func(t *testing.T) {
		_, err := c.Check(ctx, srv.URL+"/post/1", " ")
		require.Error(t, err)
	})
}
