package postgres

import (
	"context"
	"fmt"

	"crowdfund-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerRepo implements ports.LedgerRepository. The ledger_entries table is
// append-only; there are no update or delete paths.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Append inserts a ledger entry within a database transaction.
func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, holder_kind, holder_id, amount, currency,
		balance_after, entry_type, settlement_id, needs_review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.Holder.Kind, e.Holder.ID, e.Amount, e.Currency,
		e.BalanceAfter, e.Type, e.SettlementID, e.NeedsReview, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListByHolder fetches a holder's entries in creation order.
func (r *LedgerRepo) ListByHolder(ctx context.Context, holder domain.HolderRef, limit, offset int) ([]domain.LedgerEntry, error) {
	query := `SELECT id, holder_kind, holder_id, amount, currency, balance_after,
		entry_type, settlement_id, needs_review, created_at
		FROM ledger_entries WHERE holder_kind = $1 AND holder_id = $2
		ORDER BY created_at ASC, id ASC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, holder.Kind, holder.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.Holder.Kind, &e.Holder.ID, &e.Amount, &e.Currency,
			&e.BalanceAfter, &e.Type, &e.SettlementID, &e.NeedsReview, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}

// SumByHolder sums the signed amounts of all entries for a holder.
func (r *LedgerRepo) SumByHolder(ctx context.Context, holder domain.HolderRef) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE holder_kind = $1 AND holder_id = $2`

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, holder.Kind, holder.ID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum ledger entries: %w", err)
	}
	return sum, nil
}

// CountByHolder counts a holder's entries.
func (r *LedgerRepo) CountByHolder(ctx context.Context, holder domain.HolderRef) (int64, error) {
	query := `SELECT COUNT(*) FROM ledger_entries WHERE holder_kind = $1 AND holder_id = $2`

	var count int64
	if err := r.pool.QueryRow(ctx, query, holder.Kind, holder.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return count, nil
}
