package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faucetgate/internal/platform/config"
)

func TestNewWithoutURL(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestOptions(t *testing.T) {
	cfg := config.RedisConfig{
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	t.Run("config fills what the URL leaves unset", func(t *testing.T) {
		cfg := cfg
		cfg.URL = "redis://localhost:6379/1"
		opts, err := options(cfg)
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", opts.Addr)
		assert.Equal(t, 1, opts.DB)
		assert.Equal(t, 10, opts.PoolSize)
		assert.Equal(t, 2, opts.MinIdleConns)
		assert.Equal(t, 5*time.Second, opts.DialTimeout)
		assert.Equal(t, 3*time.Second, opts.ReadTimeout)
	})

	t.Run("URL parameters take precedence", func(t *testing.T) {
		cfg := cfg
		cfg.URL = "redis://localhost:6379/0?pool_size=3&dial_timeout=1s"
		opts, err := options(cfg)
		require.NoError(t, err)
		assert.Equal(t, 3, opts.PoolSize)
		assert.Equal(t, time.Second, opts.DialTimeout)
		assert.Equal(t, 3*time.Second, opts.WriteTimeout)
	})

	t.Run("malformed URL", func(t *testing.T) {
		cfg := cfg
		cfg.URL = "http://not-redis"
		_, err := options(cfg)
		assert.Error(t, err)
	})
}
