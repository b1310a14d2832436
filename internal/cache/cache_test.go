package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoader(calls *int, value string) func() ([]byte, error) {
	return func() ([]byte, error) {
		*calls++
		return []byte(value), nil
	}
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()
	calls := 0

	for i := 0; i < 2; i++ {
		v, err := c.Take(ctx, "k", countingLoader(&calls, "v"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("CachesLoadedValue", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		calls := 0

		v, err := c.Take(ctx, "k", countingLoader(&calls, "v1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), v)

		v, err = c.Take(ctx, "k", countingLoader(&calls, "v2"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), v)
		assert.Equal(t, 1, calls)
	})

	t.Run("DeleteForcesReload", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		calls := 0

		_, _ = c.Take(ctx, "k", countingLoader(&calls, "v1"))
		require.NoError(t, c.Delete(ctx, "k"))
		v, err := c.Take(ctx, "k", countingLoader(&calls, "v2"))

		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), v)
		assert.Equal(t, 2, calls)
	})

	t.Run("ExpiredEntriesReload", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		now := time.Now()
		c.now = func() time.Time { return now }
		calls := 0

		_, _ = c.Take(ctx, "k", countingLoader(&calls, "v1"))
		now = now.Add(2 * time.Minute)
		v, err := c.Take(ctx, "k", countingLoader(&calls, "v2"))

		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), v)
		assert.Equal(t, 2, calls)
	})

	t.Run("LoaderErrorNotCached", func(t *testing.T) {
		c := NewMemoryCache(time.Minute)
		boom := errors.New("boom")

		_, err := c.Take(ctx, "k", func() ([]byte, error) { return nil, boom })
		assert.Same(t, boom, err)
		assert.Equal(t, 0, c.Len())
	})
}

func TestRedisCache(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	c := NewRedisCache(client, "mongoutils_test:", time.Minute)
	defer c.Close()

	require.NoError(t, c.Delete(ctx, "k"))
	calls := 0

	v, err := c.Take(ctx, "k", countingLoader(&calls, "v1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = c.Take(ctx, "k", countingLoader(&calls, "v2"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Delete(ctx, "k"))
}
