package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"
	"voyage/infras/otel/mocks"
	"voyage/shared/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotView struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

func newCache(t *testing.T) (cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisCache(client, mocks.NewOtel()), server
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	c, server := newCache(t)

	in := slotView{Date: "2024-06-01", Slots: []string{"09:00 AM–10:00 AM"}}
	require.NoError(t, c.Save(ctx, "slot:available:2024-06-01", in, 60))

	var out slotView
	require.NoError(t, c.Get(ctx, "slot:available:2024-06-01", &out))
	assert.Equal(t, in, out)

	assert.Greater(t, server.TTL("slot:available:2024-06-01").Seconds(), 0.0)
}

func TestGetString(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	require.NoError(t, c.Save(ctx, "raw", "value", 60))

	var out string
	require.NoError(t, c.Get(ctx, "raw", &out))
	assert.Equal(t, "value", out)
}

func TestGetMiss(t *testing.T) {
	var out slotView

	c, _ := newCache(t)
	err := c.Get(context.Background(), "missing", &out)

	assert.True(t, errors.Is(err, cache.Nil))
}

func TestDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c, server := newCache(t)

	require.NoError(t, c.Save(ctx, "booking:gets:1", 1, 60))
	require.NoError(t, c.Save(ctx, "booking:gets:2", 2, 60))
	require.NoError(t, c.Save(ctx, "booking:get:abc", 3, 60))

	require.NoError(t, c.Clear(ctx, "booking:gets*"))
	assert.False(t, server.Exists("booking:gets:1"))
	assert.False(t, server.Exists("booking:gets:2"))
	assert.True(t, server.Exists("booking:get:abc"))

	require.NoError(t, c.Delete(ctx, "booking:get:abc"))
	assert.False(t, server.Exists("booking:get:abc"))
}

func TestIncrement(t *testing.T) {
	ctx := context.Background()
	c, server := newCache(t)

	first, err := c.Increment(ctx, "limiter:ip", 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)
	assert.Equal(t, 30.0, server.TTL("limiter:ip").Seconds())

	server.FastForward(10 * time.Second)

	second, err := c.Increment(ctx, "limiter:ip", 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, 20.0, server.TTL("limiter:ip").Seconds())

	server.FastForward(21 * time.Second)

	reset, err := c.Increment(ctx, "limiter:ip", 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset)
}

func TestUnavailable(t *testing.T) {
	c, server := newCache(t)
	server.Close()

	_, err := c.Increment(context.Background(), "limiter:ip", 30)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, cache.Nil))
}
