package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheWithClient(client, nil), mr
}

type snapshot struct {
	Status string  `json:"status"`
	Pct    float64 `json:"pct"`
}

func TestRedisCache_JSONRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := StatusCacheKey("host", uuid.New())

	var got snapshot
	found, err := c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, key, snapshot{Status: "draft", Pct: 25}, time.Minute))
	found, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, snapshot{Status: "draft", Pct: 25}, got)

	mr.FastForward(2 * time.Minute)
	found, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_SetJSONIfAbsent(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := StatusCacheKey("vendor", uuid.New())

	stored, err := c.SetJSONIfAbsent(ctx, key, snapshot{Status: "draft"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = c.SetJSONIfAbsent(ctx, key, snapshot{Status: "submitted"}, time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)

	var got snapshot
	_, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestRedisCache_Delete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "a", 1, 0))
	require.NoError(t, c.SetJSON(ctx, "b", 2, 0))
	require.NoError(t, c.Delete(ctx, "a", "b"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
	require.NoError(t, c.Delete(ctx))
}

func TestRedisCache_IncrWindow(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := MobileSendCacheKey(uuid.New())

	for i := int64(1); i <= 3; i++ {
		n, err := c.IncrWindow(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(time.Hour + time.Second)
	n, err := c.IncrWindow(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()
	var dest snapshot
	found, err := c.GetJSON(ctx, "x", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	n, err := c.IncrWindow(ctx, "x", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
