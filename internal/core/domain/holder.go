package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CampaignStatus represents the visibility state of a campaign.
type CampaignStatus string

const (
	CampaignStatusInactive CampaignStatus = "inactive"
	CampaignStatusActive   CampaignStatus = "active"
)

// Campaign is a crowdfunding campaign whose running balances the ledger tracks.
// Raised is the lifetime inflow total; Current is the net fundable balance
// (inflows minus payouts). Both are mutated only through atomic increments.
type Campaign struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Title     string          `json:"title"`
	Status    CampaignStatus  `json:"status"`
	Raised    decimal.Decimal `json:"raised"`
	Current   decimal.Decimal `json:"current"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Wallet is a user wallet, the second balance-holder flavor. One wallet per
// user; the balance is mutated only through atomic increments.
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
