package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RateCache caches exchange rates per currency pair with a TTL, so a burst of
// settlements in the same pair does not hammer the rate provider.
type RateCache struct {
	client *goredis.Client
	prefix string
}

// NewRateCache creates a new Redis-backed exchange rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "fxrate:",
	}
}

func (c *RateCache) key(from, to string) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, from, to)
}

// Get retrieves a cached rate for the pair.
// The second return is false when the pair is not cached.
func (c *RateCache) Get(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.key(from, to)).Result()
	if err != nil {
		if err == goredis.Nil {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("redis rate get: %w", err)
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse cached rate: %w", err)
	}
	return rate, true, nil
}

// Set stores a rate for the pair with TTL.
func (c *RateCache) Set(ctx context.Context, from, to string, rate decimal.Decimal, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(from, to), rate.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis rate set: %w", err)
	}
	return nil
}
