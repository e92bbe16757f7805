package service

import (
	"context"
	"fmt"
	"time"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"
	"crowdfund-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SettlementEngineImpl implements ports.SettlementEngine. One engine serves
// both balance-holder flavors; the record's HolderRef selects the adapter.
type SettlementEngineImpl struct {
	records    ports.SettlementRepository
	ledger     ports.LedgerRepository
	holders    map[domain.HolderKind]ports.BalanceHolder
	settings   ports.SettingsRepository
	gateway    ports.GatewayClient
	fees       ports.FeeCalculator
	transactor ports.DBTransactor
	afterHook  ports.PostSettlementHook // nil = disabled
	log        zerolog.Logger
}

// NewSettlementEngine creates a new SettlementEngineImpl. afterHook may be nil.
func NewSettlementEngine(
	records ports.SettlementRepository,
	ledger ports.LedgerRepository,
	holders []ports.BalanceHolder,
	settings ports.SettingsRepository,
	gateway ports.GatewayClient,
	fees ports.FeeCalculator,
	transactor ports.DBTransactor,
	afterHook ports.PostSettlementHook,
	log zerolog.Logger,
) *SettlementEngineImpl {
	byKind := make(map[domain.HolderKind]ports.BalanceHolder, len(holders))
	for _, h := range holders {
		byKind[h.Kind()] = h
	}
	return &SettlementEngineImpl{
		records:    records,
		ledger:     ledger,
		holders:    byKind,
		settings:   settings,
		gateway:    gateway,
		fees:       fees,
		transactor: transactor,
		afterHook:  afterHook,
		log:        log,
	}
}

// ProcessCharge settles an inbound pledge. Returns (true, nil) only when this
// call applied the settlement; duplicates, unknown references and non-success
// events are (false, nil).
func (s *SettlementEngineImpl) ProcessCharge(ctx context.Context, event domain.ChargeEvent) (bool, error) {
	rec, holder, proceed, err := s.resolve(ctx, event.Reference, event.Status)
	if !proceed {
		return false, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("fetch platform settings: %w", err))
	}

	amount := domain.MajorUnits(event.AmountMinor)
	gatewayFee := domain.MajorUnits(event.FeeMinor)
	platformFee := s.fees.PlatformFee(amount, settings.FeePercentage)

	state, err := holder.Get(ctx, rec.Holder.ID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("resolve holder: %w", err))
	}
	if state == nil {
		return false, apperror.ErrHolderNotFound(rec.Holder.ID.String())
	}

	// Holder-facing increment: amount net of both fees, converted to the
	// holder's currency when it differs.
	increment := amount.Sub(platformFee.Add(gatewayFee))
	increment, entryCurrency, needsReview := s.toHolderCurrency(ctx, increment, rec.Currency, state.Currency)

	applied, err := s.apply(ctx, rec, ports.SettleUpdate{
		Reference:         event.Reference,
		GatewayReference:  event.GatewayID,
		Amount:            amount,
		GatewayFee:        gatewayFee,
		PlatformFee:       platformFee,
		Channel:           event.Channel,
		AuthorizationCode: event.AuthorizationCode,
		SettledAt:         event.PaidAt,
	}, holder, increment, entryCurrency, domain.EntryTypePayIn, needsReview)
	if err != nil || !applied {
		return false, err
	}

	if s.afterHook != nil {
		s.afterHook(ctx, rec)
	}

	s.log.Info().
		Str("reference", event.Reference).
		Str("amount", amount.String()).
		Str("platform_fee", platformFee.String()).
		Str("increment", increment.String()).
		Msg("charge settled")

	return true, nil
}

// ProcessTransfer settles an outbound payout. The initial webhook payload does
// not carry the final fee, so the gateway is queried first; if that lookup
// fails the record stays pending and the event is safe to retry on redelivery.
func (s *SettlementEngineImpl) ProcessTransfer(ctx context.Context, event domain.TransferEvent) (bool, error) {
	rec, holder, proceed, err := s.resolve(ctx, event.Reference, event.Status)
	if !proceed {
		return false, err
	}

	transfer, err := s.gateway.GetTransfer(ctx, event.GatewayID)
	if err != nil {
		s.log.Warn().Err(err).Str("reference", event.Reference).Msg("transfer lookup failed, leaving record pending")
		return false, apperror.ErrGatewayLookup(err)
	}

	amount := domain.MajorUnits(event.AmountMinor)
	gatewayFee := domain.MajorUnits(transfer.FeeChargedMinor)

	state, err := holder.Get(ctx, rec.Holder.ID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("resolve holder: %w", err))
	}
	if state == nil {
		return false, apperror.ErrHolderNotFound(rec.Holder.ID.String())
	}

	// The holder bears both the transferred amount and the gateway fee.
	decrement := amount.Add(gatewayFee)
	decrement, entryCurrency, needsReview := s.toHolderCurrency(ctx, decrement, rec.Currency, state.Currency)

	applied, err := s.apply(ctx, rec, ports.SettleUpdate{
		Reference:        event.Reference,
		GatewayReference: event.GatewayID,
		Amount:           amount,
		GatewayFee:       gatewayFee,
		PlatformFee:      decimal.Zero,
		Channel:          transfer.RecipientType,
		SettledAt:        time.Now().UTC(),
	}, holder, decrement.Neg(), entryCurrency, domain.EntryTypePayOut, needsReview)
	if err != nil || !applied {
		return false, err
	}

	s.log.Info().
		Str("reference", event.Reference).
		Str("amount", amount.String()).
		Str("gateway_fee", gatewayFee.String()).
		Msg("transfer settled")

	return true, nil
}

// resolve looks up the record and its holder adapter and handles the shared
// preconditions. proceed is false when the event needs no further work.
func (s *SettlementEngineImpl) resolve(ctx context.Context, reference, status string) (*domain.SettlementRecord, ports.BalanceHolder, bool, error) {
	rec, err := s.records.GetByReference(ctx, reference)
	if err != nil {
		return nil, nil, false, apperror.InternalError(fmt.Errorf("lookup record: %w", err))
	}
	if rec == nil {
		s.log.Warn().Str("reference", reference).Msg("event for unknown reference, discarding")
		return nil, nil, false, nil
	}
	if rec.IsTerminal() {
		s.log.Info().Str("reference", reference).Str("status", string(rec.Status)).Msg("event for finalized record, discarding")
		return nil, nil, false, nil
	}

	if status != domain.EventStatusSuccess {
		// Failure outcomes are terminal for the reference: flip to failed so a
		// redelivered failure is recognized as a duplicate.
		failed, err := s.records.MarkFailed(ctx, reference)
		if err != nil {
			return nil, nil, false, apperror.InternalError(fmt.Errorf("mark failed: %w", err))
		}
		s.log.Info().Str("reference", reference).Bool("transitioned", failed).Msg("non-success event, record failed")
		return nil, nil, false, nil
	}

	holder, ok := s.holders[rec.Holder.Kind]
	if !ok {
		return nil, nil, false, apperror.ErrUnknownHolderKind(string(rec.Holder.Kind))
	}
	return rec, holder, true, nil
}

// toHolderCurrency converts a holder-facing delta into the holder's currency.
// Conversion failure does not block settlement: the unconverted amount is
// applied in the settlement currency and the entry is flagged for review.
func (s *SettlementEngineImpl) toHolderCurrency(ctx context.Context, delta decimal.Decimal, recordCurrency, holderCurrency string) (decimal.Decimal, string, bool) {
	if recordCurrency == holderCurrency {
		return delta, recordCurrency, false
	}
	converted, err := s.fees.Convert(ctx, delta, recordCurrency, holderCurrency)
	if err != nil {
		s.log.Warn().Err(err).
			Str("from", recordCurrency).
			Str("to", holderCurrency).
			Msg("conversion failed, applying unconverted amount for manual review")
		return delta, recordCurrency, true
	}
	return converted, holderCurrency, false
}

// apply performs the atomic state transition: conditional settle update,
// atomic balance adjust, ledger append (last), all in one database
// transaction. Losing the conditional update means another delivery won the
// race; everything rolls back and the event is treated as a duplicate.
func (s *SettlementEngineImpl) apply(
	ctx context.Context,
	rec *domain.SettlementRecord,
	update ports.SettleUpdate,
	holder ports.BalanceHolder,
	delta decimal.Decimal,
	entryCurrency string,
	entryType domain.LedgerEntryType,
	needsReview bool,
) (bool, error) {
	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	settled, err := s.records.Settle(ctx, tx, update)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("settle record: %w", err))
	}
	if !settled {
		s.log.Info().Str("reference", update.Reference).Msg("lost settle race, event already processed")
		return false, nil
	}

	balanceAfter, err := holder.Adjust(ctx, tx, rec.Holder.ID, delta)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("adjust balance: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:           uuid.New(),
		Holder:       rec.Holder,
		Amount:       delta,
		Currency:     entryCurrency,
		BalanceAfter: balanceAfter,
		Type:         entryType,
		SettlementID: rec.ID,
		NeedsReview:  needsReview,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.ledger.Append(ctx, tx, entry); err != nil {
		return false, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return true, nil
}
