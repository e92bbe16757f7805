package ports

import (
	"context"

	"crowdfund-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SettlementEngine consumes typed gateway events and applies their economic
// effect at most once. The boolean reports whether a settlement was applied;
// duplicates, unknown references and non-success events are (false, nil).
type SettlementEngine interface {
	ProcessCharge(ctx context.Context, event domain.ChargeEvent) (bool, error)
	ProcessTransfer(ctx context.Context, event domain.TransferEvent) (bool, error)
}

// HolderState is a snapshot of a balance holder's running balance.
type HolderState struct {
	Balance  decimal.Decimal
	Currency string
}

// BalanceHolder is the capability the engine needs from a balance-holder
// flavor (campaign or wallet). Adjust must be implemented as an atomic
// field-level increment returning the post-increment balance, so concurrent
// settlements never lose an update and ledger snapshots stay consistent.
type BalanceHolder interface {
	Kind() domain.HolderKind
	Get(ctx context.Context, id uuid.UUID) (*HolderState, error)
	Adjust(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// PostSettlementHook runs after a settlement has been committed. Used for the
// first-charge campaign activation side effect; failures are logged, never
// surfaced, and must not affect ledger correctness.
type PostSettlementHook func(ctx context.Context, record *domain.SettlementRecord)

// FeeCalculator performs fee and cross-currency arithmetic. Pure apart from
// the fetched exchange rate; no side effects on ledger state.
type FeeCalculator interface {
	// PlatformFee computes percentage*amount/100; zero when percentage is unset.
	PlatformFee(amount, percentage decimal.Decimal) decimal.Decimal
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// RateSource resolves an exchange rate for a currency pair.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// GatewayTransfer is the authoritative transfer state fetched from the
// gateway after a transfer webhook, carrying the final fee.
type GatewayTransfer struct {
	FeeChargedMinor int64
	RecipientType   string
}

// GatewayClient queries the payment gateway for transfer status.
type GatewayClient interface {
	GetTransfer(ctx context.Context, gatewayID int64) (*GatewayTransfer, error)
}

// SignatureService verifies gateway webhook signatures (HMAC over raw body).
type SignatureService interface {
	Sign(secretKey string, payload []byte) string
	Verify(secretKey string, payload []byte, signature string) bool
}

// EventRecorder persists received gateway events for audit, best-effort.
type EventRecorder interface {
	Record(ctx context.Context, eventType, reference string, outcome domain.GatewayEventOutcome, payload []byte)
}

// ReconciliationReport compares a holder's stored balance against the replay
// of its ledger entries.
type ReconciliationReport struct {
	Holder     domain.HolderRef `json:"holder"`
	Balance    decimal.Decimal  `json:"balance"`
	LedgerSum  decimal.Decimal  `json:"ledger_sum"`
	Entries    int64            `json:"entries"`
	Consistent bool             `json:"consistent"`
}

// ReconciliationService exposes ledger reads and the replay-invariant check.
type ReconciliationService interface {
	ListEntries(ctx context.Context, holder domain.HolderRef, page, pageSize int) ([]domain.LedgerEntry, error)
	CheckHolder(ctx context.Context, holder domain.HolderRef) (*ReconciliationReport, error)
}
