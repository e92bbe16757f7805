package postgres

import (
	"context"
	"errors"
	"fmt"

	"crowdfund-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CampaignRepo implements ports.CampaignRepository.
type CampaignRepo struct {
	pool Pool
}

// NewCampaignRepo creates a new CampaignRepo.
func NewCampaignRepo(pool Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

// GetByID fetches a campaign by its UUID.
func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	query := `SELECT id, owner_id, title, status, raised, current, currency, created_at, updated_at
		FROM campaigns WHERE id = $1`

	c := &domain.Campaign{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.Title, &c.Status,
		&c.Raised, &c.Current, &c.Currency,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get campaign by id: %w", err)
	}
	return c, nil
}

// AdjustBalances atomically increments raised and current as a field-level
// increment, never read-modify-write, and returns the post-increment values.
// This MUST be called within a transaction.
func (r *CampaignRepo) AdjustBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID, deltaRaised, deltaCurrent decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	query := `UPDATE campaigns
		SET raised = raised + $1, current = current + $2, updated_at = NOW()
		WHERE id = $3
		RETURNING raised, current`

	var raised, current decimal.Decimal
	err := tx.QueryRow(ctx, query, deltaRaised, deltaCurrent, id).Scan(&raised, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("campaign not found: %s", id)
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("adjust campaign balances: %w", err)
	}
	return raised, current, nil
}

// Activate flips the campaign to active. Safe to call repeatedly; the first
// successful charge is what triggers it.
func (r *CampaignRepo) Activate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> $1`

	if _, err := r.pool.Exec(ctx, query, domain.CampaignStatusActive, id); err != nil {
		return fmt.Errorf("activate campaign: %w", err)
	}
	return nil
}
