package service

import (
	"context"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CampaignHolder adapts campaigns to the ports.BalanceHolder capability.
// The campaign's running balance is its current (net fundable) total.
type CampaignHolder struct {
	repo ports.CampaignRepository
}

// NewCampaignHolder creates a campaign-flavored balance holder.
func NewCampaignHolder(repo ports.CampaignRepository) *CampaignHolder {
	return &CampaignHolder{repo: repo}
}

func (h *CampaignHolder) Kind() domain.HolderKind {
	return domain.HolderKindCampaign
}

func (h *CampaignHolder) Get(ctx context.Context, id uuid.UUID) (*ports.HolderState, error) {
	campaign, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, nil
	}
	return &ports.HolderState{Balance: campaign.Current, Currency: campaign.Currency}, nil
}

// Adjust applies the delta atomically. Inflows raise both the lifetime raised
// total and the fundable current balance; outflows reduce current only.
func (h *CampaignHolder) Adjust(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	deltaRaised := delta
	if delta.IsNegative() {
		deltaRaised = decimal.Zero
	}
	_, current, err := h.repo.AdjustBalances(ctx, tx, id, deltaRaised, delta)
	if err != nil {
		return decimal.Zero, err
	}
	return current, nil
}

// WalletHolder adapts user wallets to the ports.BalanceHolder capability.
type WalletHolder struct {
	repo ports.WalletRepository
}

// NewWalletHolder creates a wallet-flavored balance holder.
func NewWalletHolder(repo ports.WalletRepository) *WalletHolder {
	return &WalletHolder{repo: repo}
}

func (h *WalletHolder) Kind() domain.HolderKind {
	return domain.HolderKindWallet
}

func (h *WalletHolder) Get(ctx context.Context, id uuid.UUID) (*ports.HolderState, error) {
	wallet, err := h.repo.GetByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, nil
	}
	return &ports.HolderState{Balance: wallet.Balance, Currency: wallet.Currency}, nil
}

func (h *WalletHolder) Adjust(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	return h.repo.AdjustBalance(ctx, tx, id, delta)
}
