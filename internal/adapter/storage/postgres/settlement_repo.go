package postgres

import (
	"context"
	"errors"
	"fmt"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// SettlementRepo implements ports.SettlementRepository.
type SettlementRepo struct {
	pool Pool
}

// NewSettlementRepo creates a new SettlementRepo.
func NewSettlementRepo(pool Pool) *SettlementRepo {
	return &SettlementRepo{pool: pool}
}

// GetByReference fetches a settlement record by its client-supplied reference.
func (r *SettlementRepo) GetByReference(ctx context.Context, reference string) (*domain.SettlementRecord, error) {
	query := `SELECT id, reference, gateway_reference, direction, amount, currency, status,
		gateway_fee, platform_fee, channel, authorization_code, holder_kind, holder_id,
		settled_at, created_at, updated_at
		FROM settlement_records WHERE reference = $1`

	rec := &domain.SettlementRecord{}
	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&rec.ID, &rec.Reference, &rec.GatewayReference, &rec.Direction,
		&rec.Amount, &rec.Currency, &rec.Status,
		&rec.GatewayFee, &rec.PlatformFee, &rec.Channel, &rec.AuthorizationCode,
		&rec.Holder.Kind, &rec.Holder.ID,
		&rec.SettledAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settlement record by reference: %w", err)
	}
	return rec, nil
}

// Settle stamps the financial fields and flips the record to settled in one
// conditional update guarded on status=pending. Returns false when the record
// was already terminal (duplicate or raced delivery).
func (r *SettlementRepo) Settle(ctx context.Context, tx pgx.Tx, u ports.SettleUpdate) (bool, error) {
	query := `UPDATE settlement_records
		SET status = $2, gateway_reference = $3, amount = $4, gateway_fee = $5,
			platform_fee = $6, channel = $7, authorization_code = $8,
			settled_at = $9, updated_at = NOW()
		WHERE reference = $1 AND status = $10`

	tag, err := tx.Exec(ctx, query,
		u.Reference, domain.SettlementStatusSettled, u.GatewayReference,
		u.Amount, u.GatewayFee, u.PlatformFee, u.Channel, u.AuthorizationCode,
		u.SettledAt, domain.SettlementStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("settle record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkFailed flips a pending record to failed. Conditional on status=pending;
// returns false when the record was already terminal.
func (r *SettlementRepo) MarkFailed(ctx context.Context, reference string) (bool, error) {
	query := `UPDATE settlement_records SET status = $2, updated_at = NOW()
		WHERE reference = $1 AND status = $3`

	tag, err := r.pool.Exec(ctx, query,
		reference, domain.SettlementStatusFailed, domain.SettlementStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark record failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
