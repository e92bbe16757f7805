package postgres

import (
	"context"
	"errors"
	"fmt"

	"crowdfund-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SettingsRepo implements ports.SettingsRepository. Settings live in a
// single-row table and are read fresh on every call so operator changes take
// effect between events.
type SettingsRepo struct {
	pool Pool
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(pool Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// Get fetches the current platform settings. An empty table yields zero-value
// settings (no platform fee, no gateway secret), matching an unconfigured
// installation.
func (r *SettingsRepo) Get(ctx context.Context) (*domain.PlatformSettings, error) {
	query := `SELECT fee_percentage, gateway_secret_key, updated_at
		FROM platform_settings ORDER BY updated_at DESC LIMIT 1`

	s := &domain.PlatformSettings{}
	err := r.pool.QueryRow(ctx, query).Scan(&s.FeePercentage, &s.GatewaySecretKey, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.PlatformSettings{FeePercentage: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get platform settings: %w", err)
	}
	return s, nil
}
