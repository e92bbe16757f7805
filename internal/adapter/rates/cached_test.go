package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"crowdfund-ledger/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type memCache struct {
	rates  map[string]decimal.Decimal
	getErr error
	setErr error
}

func newMemCache() *memCache {
	return &memCache{rates: map[string]decimal.Decimal{}}
}

func (c *memCache) Get(_ context.Context, from, to string) (decimal.Decimal, bool, error) {
	if c.getErr != nil {
		return decimal.Zero, false, c.getErr
	}
	rate, ok := c.rates[from+":"+to]
	return rate, ok, nil
}

func (c *memCache) Set(_ context.Context, from, to string, rate decimal.Decimal, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.rates[from+":"+to] = rate
	return nil
}

func TestCachedSource_Hit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockRateSource(ctrl) // no expectations: provider untouched
	cache := newMemCache()
	cache.rates["KES:USD"] = decimal.RequireFromString("0.00775")

	s := NewCachedSource(source, cache, time.Hour, zerolog.Nop())
	rate, err := s.Rate(context.Background(), "KES", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.00775")))
}

func TestCachedSource_MissFillsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	source := mocks.NewMockRateSource(ctrl)
	source.EXPECT().Rate(ctx, "KES", "USD").Return(decimal.RequireFromString("0.00775"), nil)

	cache := newMemCache()
	s := NewCachedSource(source, cache, time.Hour, zerolog.Nop())

	rate, err := s.Rate(ctx, "KES", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.00775")))

	cached, ok := cache.rates["KES:USD"]
	assert.True(t, ok)
	assert.True(t, cached.Equal(rate))
}

func TestCachedSource_CacheErrorsAreBestEffort(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	source := mocks.NewMockRateSource(ctrl)
	source.EXPECT().Rate(ctx, "KES", "USD").Return(decimal.RequireFromString("0.00775"), nil)

	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")

	s := NewCachedSource(source, cache, time.Hour, zerolog.Nop())
	rate, err := s.Rate(ctx, "KES", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.00775")))
}

func TestCachedSource_ProviderErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	source := mocks.NewMockRateSource(ctrl)
	source.EXPECT().Rate(ctx, "KES", "USD").Return(decimal.Zero, errors.New("provider down"))

	s := NewCachedSource(source, newMemCache(), time.Hour, zerolog.Nop())
	_, err := s.Rate(ctx, "KES", "USD")
	assert.Error(t, err)
}
