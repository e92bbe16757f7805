package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryType mirrors the direction of the originating settlement.
type LedgerEntryType string

const (
	EntryTypePayIn  LedgerEntryType = "payin"
	EntryTypePayOut LedgerEntryType = "payout"
)

// LedgerEntry is an immutable record of one balance-affecting event, appended
// exactly once per successfully settled record. Amount carries the signed
// effect on the holder (positive inflow, negative outflow) and BalanceAfter
// snapshots the holder's running balance immediately after this entry.
//
// Invariant: replaying all entries for a holder in creation order and summing
// Amount reproduces the holder's current balance exactly.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"id"`
	Holder       HolderRef       `json:"holder"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Type         LedgerEntryType `json:"type"`
	SettlementID uuid.UUID       `json:"settlement_id"`
	// NeedsReview marks entries whose currency conversion failed and which
	// were applied unconverted, for manual reconciliation.
	NeedsReview bool      `json:"needs_review"`
	CreatedAt   time.Time `json:"created_at"`
}
