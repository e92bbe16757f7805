package rates

import (
	"context"
	"time"

	"crowdfund-ledger/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Cache is the pair-rate cache in front of the provider (redis in production).
type Cache interface {
	Get(ctx context.Context, from, to string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, from, to string, rate decimal.Decimal, ttl time.Duration) error
}

// CachedSource decorates a RateSource with a TTL cache. Cache errors are
// best-effort: the provider is still consulted.
type CachedSource struct {
	source ports.RateSource
	cache  Cache
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedSource wraps source with the given cache.
func NewCachedSource(source ports.RateSource, cache Cache, ttl time.Duration, log zerolog.Logger) *CachedSource {
	return &CachedSource{source: source, cache: cache, ttl: ttl, log: log}
}

// Rate returns the cached pair rate, falling through to the provider on miss.
func (s *CachedSource) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	rate, ok, err := s.cache.Get(ctx, from, to)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate cache read failed, querying provider")
	} else if ok {
		return rate, nil
	}

	rate, err = s.source.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.cache.Set(ctx, from, to, rate, s.ttl); err != nil {
		s.log.Warn().Err(err).Msg("rate cache write failed")
	}
	return rate, nil
}
