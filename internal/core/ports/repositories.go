package ports

import (
	"context"
	"time"

	"crowdfund-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SettleUpdate carries the financial fields stamped onto a record when it is
// settled. The status flip and these writes happen in one conditional update.
type SettleUpdate struct {
	Reference         string
	GatewayReference  int64
	Amount            decimal.Decimal
	GatewayFee        decimal.Decimal
	PlatformFee       decimal.Decimal
	Channel           string
	AuthorizationCode string
	SettledAt         time.Time
}

// SettlementRepository defines persistence for pending payment/payout records.
// Settle and MarkFailed are conditional updates guarded on status=pending;
// they report false when the record was already terminal, which is how
// duplicate deliveries are made safe.
type SettlementRepository interface {
	GetByReference(ctx context.Context, reference string) (*domain.SettlementRecord, error)
	Settle(ctx context.Context, tx pgx.Tx, update SettleUpdate) (bool, error)
	MarkFailed(ctx context.Context, reference string) (bool, error)
}

// CampaignRepository defines persistence for campaigns.
type CampaignRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	// AdjustBalances atomically increments raised and current by the given
	// deltas and returns the post-increment values.
	AdjustBalances(ctx context.Context, tx pgx.Tx, id uuid.UUID, deltaRaised, deltaCurrent decimal.Decimal) (raised, current decimal.Decimal, err error)
	// Activate flips the campaign to active. Idempotent.
	Activate(ctx context.Context, id uuid.UUID) error
}

// WalletRepository defines persistence for user wallets.
type WalletRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// AdjustBalance atomically increments the wallet balance by delta and
	// returns the post-increment value.
	AdjustBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// LedgerRepository defines the append-only ledger store. Entries are never
// updated or deleted.
type LedgerRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	ListByHolder(ctx context.Context, holder domain.HolderRef, limit, offset int) ([]domain.LedgerEntry, error)
	// SumByHolder sums the signed amounts of all entries for a holder, the
	// replay side of the balance/ledger consistency invariant.
	SumByHolder(ctx context.Context, holder domain.HolderRef) (decimal.Decimal, error)
	CountByHolder(ctx context.Context, holder domain.HolderRef) (int64, error)
}

// SettingsRepository fetches platform settings from shared storage. Callers
// fetch fresh per event; nothing is cached in process memory.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.PlatformSettings, error)
}

// GatewayEventRepository records every received webhook delivery for audit.
type GatewayEventRepository interface {
	Record(ctx context.Context, event *domain.GatewayEvent) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
