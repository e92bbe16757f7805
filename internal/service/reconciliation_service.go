package service

import (
	"context"
	"fmt"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"
	"crowdfund-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ReconciliationServiceImpl implements ports.ReconciliationService: ledger
// reads plus the replay check that the sum of a holder's entries equals its
// stored balance.
type ReconciliationServiceImpl struct {
	ledger  ports.LedgerRepository
	holders map[domain.HolderKind]ports.BalanceHolder
	log     zerolog.Logger
}

// NewReconciliationService creates a new ReconciliationServiceImpl.
func NewReconciliationService(ledger ports.LedgerRepository, holders []ports.BalanceHolder, log zerolog.Logger) *ReconciliationServiceImpl {
	byKind := make(map[domain.HolderKind]ports.BalanceHolder, len(holders))
	for _, h := range holders {
		byKind[h.Kind()] = h
	}
	return &ReconciliationServiceImpl{ledger: ledger, holders: byKind, log: log}
}

// ListEntries returns a page of a holder's ledger entries in creation order.
func (s *ReconciliationServiceImpl) ListEntries(ctx context.Context, holder domain.HolderRef, page, pageSize int) ([]domain.LedgerEntry, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	entries, err := s.ledger.ListByHolder(ctx, holder, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list ledger entries: %w", err))
	}
	return entries, nil
}

// CheckHolder replays the holder's ledger and compares the sum against the
// stored balance.
func (s *ReconciliationServiceImpl) CheckHolder(ctx context.Context, holder domain.HolderRef) (*ports.ReconciliationReport, error) {
	adapter, ok := s.holders[holder.Kind]
	if !ok {
		return nil, apperror.ErrUnknownHolderKind(string(holder.Kind))
	}

	state, err := adapter.Get(ctx, holder.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve holder: %w", err))
	}
	if state == nil {
		return nil, apperror.ErrHolderNotFound(holder.ID.String())
	}

	sum, err := s.ledger.SumByHolder(ctx, holder)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum ledger entries: %w", err))
	}
	count, err := s.ledger.CountByHolder(ctx, holder)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count ledger entries: %w", err))
	}

	report := &ports.ReconciliationReport{
		Holder:     holder,
		Balance:    state.Balance,
		LedgerSum:  sum,
		Entries:    count,
		Consistent: sum.Equal(state.Balance),
	}
	if !report.Consistent {
		s.log.Error().
			Str("holder_kind", string(holder.Kind)).
			Str("holder_id", holder.ID.String()).
			Str("balance", state.Balance.String()).
			Str("ledger_sum", sum.String()).
			Msg("ledger replay mismatch")
	}
	return report, nil
}
