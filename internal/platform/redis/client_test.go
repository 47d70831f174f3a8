package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardeval/internal/platform/config"
)

func TestNew_WithoutURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestOptions(t *testing.T) {
	t.Run("applies overrides", func(t *testing.T) {
		opts, err := options(config.RedisConfig{
			URL:          "redis://:secret@cache.internal:6380/2",
			PoolSize:     32,
			MinIdleConns: 4,
			DialTimeout:  time.Second,
			ReadTimeout:  250 * time.Millisecond,
			WriteTimeout: 250 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 32, opts.PoolSize)
		assert.Equal(t, 4, opts.MinIdleConns)
		assert.Equal(t, time.Second, opts.DialTimeout)
		assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
	})

	t.Run("zero values keep url settings", func(t *testing.T) {
		opts, err := options(config.RedisConfig{URL: "redis://localhost:6379/0?pool_size=7"})
		require.NoError(t, err)
		assert.Equal(t, 7, opts.PoolSize)
	})

	t.Run("rejects bad url", func(t *testing.T) {
		_, err := options(config.RedisConfig{URL: "http://localhost:6379"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse redis URL")
	})
}
