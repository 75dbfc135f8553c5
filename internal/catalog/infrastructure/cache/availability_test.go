package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stackline/order-service/internal/catalog/infrastructure/cache"
)

func newCache(t *testing.T) (*cache.AvailabilityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.New(rdb, time.Minute), mr
}

func TestSetAndGet(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "prod-1", 7))

	qty, ok, err := c.Get(ctx, "prod-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 7, qty)
}

func TestGet_MissIsNotAnError(t *testing.T) {
	c, _ := newCache(t)
	_, ok, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGet_EntryExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "prod-1", 3))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "prod-1")
	require.NoError(t, err)
	require.False(t, ok)
}
