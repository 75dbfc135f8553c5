package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stackline/order-service/pkg/idempotency"
)

func newStore(t *testing.T) (*idempotency.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return idempotency.NewStore(rdb, time.Minute), mr
}

func TestSeen_FirstDeliveryWins(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	key := store.Key("order.events", 0, 42)

	seen, err := store.Seen(ctx, key)
	require.NoError(t, err)
	require.False(t, seen)

	seen, err = store.Seen(ctx, key)
	require.NoError(t, err)
	require.True(t, seen)
}

func TestSeen_DistinctOffsetsAreIndependent(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	seen, err := store.Seen(ctx, store.Key("order.events", 0, 1))
	require.NoError(t, err)
	require.False(t, seen)

	seen, err = store.Seen(ctx, store.Key("order.events", 0, 2))
	require.NoError(t, err)
	require.False(t, seen)

	seen, err = store.Seen(ctx, store.Key("order.events", 1, 1))
	require.NoError(t, err)
	require.False(t, seen)
}

func TestSeen_ExpiresWithTTL(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	key := store.Key("order.events", 0, 7)

	_, err := store.Seen(ctx, key)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	seen, err := store.Seen(ctx, key)
	require.NoError(t, err)
	require.False(t, seen)
}
