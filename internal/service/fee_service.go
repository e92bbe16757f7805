package service

import (
	"context"

	"crowdfund-ledger/internal/core/ports"
	"crowdfund-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FeeService implements ports.FeeCalculator.
type FeeService struct {
	rates ports.RateSource
	log   zerolog.Logger
}

// NewFeeService creates a new FeeService.
func NewFeeService(rates ports.RateSource, log zerolog.Logger) *FeeService {
	return &FeeService{rates: rates, log: log}
}

// PlatformFee computes the platform cut: percentage * amount / 100.
// An unset (zero or negative) percentage yields a zero fee.
func (s *FeeService) PlatformFee(amount, percentage decimal.Decimal) decimal.Decimal {
	if percentage.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return percentage.Mul(amount).Div(hundred)
}

// Convert converts amount from one currency to another using the injected
// rate source. A same-currency conversion is the identity. Rate lookup
// failures surface as FX_001 so callers can apply their fallback policy.
func (s *FeeService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, err := s.rates.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, apperror.ErrRateUnavailable(err)
	}
	return amount.Mul(rate), nil
}
