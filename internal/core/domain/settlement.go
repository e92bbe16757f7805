package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementDirection indicates whether money flows into or out of the platform.
type SettlementDirection string

const (
	DirectionIn  SettlementDirection = "in"  // charge / pledge
	DirectionOut SettlementDirection = "out" // payout / transfer
)

// SettlementStatus represents the lifecycle state of a settlement record.
type SettlementStatus string

const (
	SettlementStatusPending SettlementStatus = "pending"
	SettlementStatusSettled SettlementStatus = "settled"
	SettlementStatusFailed  SettlementStatus = "failed"
)

// HolderKind identifies which balance-holder flavor a record affects.
type HolderKind string

const (
	HolderKindCampaign HolderKind = "campaign"
	HolderKindWallet   HolderKind = "wallet"
)

// HolderRef points at the balance holder a settlement record affects.
// For campaigns the ID is the campaign ID; for wallets it is the owning user ID.
type HolderRef struct {
	Kind HolderKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// SettlementRecord represents one attempted money movement. It is created in
// pending state by the initiation flow and finalized exactly once by the
// settlement engine when a matching gateway event arrives.
type SettlementRecord struct {
	ID                uuid.UUID           `json:"id"`
	Reference         string              `json:"reference"` // client-generated, globally unique
	GatewayReference  *int64              `json:"gateway_reference,omitempty"`
	Direction         SettlementDirection `json:"direction"`
	Amount            decimal.Decimal     `json:"amount"` // major units
	Currency          string              `json:"currency"`
	Status            SettlementStatus    `json:"status"`
	GatewayFee        decimal.Decimal     `json:"gateway_fee"`
	PlatformFee       decimal.Decimal     `json:"platform_fee"`
	Channel           *string             `json:"channel,omitempty"`
	AuthorizationCode *string             `json:"-"`
	Holder            HolderRef           `json:"holder"`
	SettledAt         *time.Time          `json:"settled_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// IsTerminal returns true once the record can no longer be mutated.
func (r *SettlementRecord) IsTerminal() bool {
	return r.Status == SettlementStatusSettled || r.Status == SettlementStatusFailed
}
