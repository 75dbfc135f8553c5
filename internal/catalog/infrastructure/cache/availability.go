// Package cache keeps a redis read cache of per-product availability so
// storefront reads do not hit the catalog tables.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyAvailability = "catalog:availability:%s"

type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func (c *AvailabilityCache) Set(ctx context.Context, productID string, quantity int) error {
	return c.rdb.Set(ctx, fmt.Sprintf(keyAvailability, productID), quantity, c.ttl).Err()
}

// Get reports the cached quantity; the second return is false on a miss.
func (c *AvailabilityCache) Get(ctx context.Context, productID string) (int, bool, error) {
	v, err := c.rdb.Get(ctx, fmt.Sprintf(keyAvailability, productID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
