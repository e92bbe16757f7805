package integration

import (
	"context"
	"fmt"
	"sync"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memStore is a single in-memory "database" shared by the repo adapters below.
// One mutex guards everything so conditional updates are atomic the same way a
// row-level UPDATE ... WHERE status='pending' is.
type memStore struct {
	mu        sync.Mutex
	records   map[string]*domain.SettlementRecord
	campaigns map[uuid.UUID]*domain.Campaign
	wallets   map[uuid.UUID]*domain.Wallet
	entries   []domain.LedgerEntry
	settings  *domain.PlatformSettings
}

func newMemStore() *memStore {
	return &memStore{
		records:   make(map[string]*domain.SettlementRecord),
		campaigns: make(map[uuid.UUID]*domain.Campaign),
		wallets:   make(map[uuid.UUID]*domain.Wallet),
		settings:  &domain.PlatformSettings{FeePercentage: decimal.Zero},
	}
}

// memTx satisfies pgx.Tx for code that threads a transaction through the
// repos. Writes apply immediately; the settle guard makes losers back off
// before any write, which is what the race tests exercise.
type memTx struct{ pgx.Tx }

func (memTx) Commit(context.Context) error   { return nil }
func (memTx) Rollback(context.Context) error { return nil }

type memTransactor struct{}

func (memTransactor) Begin(context.Context) (pgx.Tx, error) { return memTx{}, nil }

// --- Settlement records ---

type memSettlementRepo struct{ store *memStore }

func (r *memSettlementRepo) GetByReference(_ context.Context, reference string) (*domain.SettlementRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.records[reference]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *memSettlementRepo) Settle(_ context.Context, _ pgx.Tx, u ports.SettleUpdate) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.records[u.Reference]
	if !ok || rec.Status != domain.SettlementStatusPending {
		return false, nil
	}
	rec.Status = domain.SettlementStatusSettled
	rec.GatewayReference = &u.GatewayReference
	rec.Amount = u.Amount
	rec.GatewayFee = u.GatewayFee
	rec.PlatformFee = u.PlatformFee
	if u.Channel != "" {
		rec.Channel = &u.Channel
	}
	if u.AuthorizationCode != "" {
		rec.AuthorizationCode = &u.AuthorizationCode
	}
	settledAt := u.SettledAt
	rec.SettledAt = &settledAt
	return true, nil
}

func (r *memSettlementRepo) MarkFailed(_ context.Context, reference string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.records[reference]
	if !ok || rec.Status != domain.SettlementStatusPending {
		return false, nil
	}
	rec.Status = domain.SettlementStatusFailed
	return true, nil
}

// --- Campaigns ---

type memCampaignRepo struct{ store *memStore }

func (r *memCampaignRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.campaigns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCampaignRepo) AdjustBalances(_ context.Context, _ pgx.Tx, id uuid.UUID, deltaRaised, deltaCurrent decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.campaigns[id]
	if !ok {
		return decimal.Zero, decimal.Zero, fmt.Errorf("campaign not found: %s", id)
	}
	c.Raised = c.Raised.Add(deltaRaised)
	c.Current = c.Current.Add(deltaCurrent)
	return c.Raised, c.Current, nil
}

func (r *memCampaignRepo) Activate(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.campaigns[id]; ok {
		c.Status = domain.CampaignStatusActive
	}
	return nil
}

// --- Wallets ---

type memWalletRepo struct{ store *memStore }

func (r *memWalletRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[userID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) AdjustBalance(_ context.Context, _ pgx.Tx, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[userID]
	if !ok {
		return decimal.Zero, fmt.Errorf("wallet not found for user: %s", userID)
	}
	w.Balance = w.Balance.Add(delta)
	return w.Balance, nil
}

// --- Ledger ---

type memLedgerRepo struct{ store *memStore }

func (r *memLedgerRepo) Append(_ context.Context, _ pgx.Tx, e *domain.LedgerEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.entries = append(r.store.entries, *e)
	return nil
}

func (r *memLedgerRepo) ListByHolder(_ context.Context, holder domain.HolderRef, limit, offset int) ([]domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range r.store.entries {
		if e.Holder == holder {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memLedgerRepo) SumByHolder(_ context.Context, holder domain.HolderRef) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sum := decimal.Zero
	for _, e := range r.store.entries {
		if e.Holder == holder {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func (r *memLedgerRepo) CountByHolder(_ context.Context, holder domain.HolderRef) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, e := range r.store.entries {
		if e.Holder == holder {
			count++
		}
	}
	return count, nil
}

// --- Settings ---

type memSettingsRepo struct{ store *memStore }

func (r *memSettingsRepo) Get(context.Context) (*domain.PlatformSettings, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *r.store.settings
	return &cp, nil
}

// --- Gateway ---

type fakeGateway struct {
	feeMinor int64
	err      error
}

func (g *fakeGateway) GetTransfer(context.Context, int64) (*ports.GatewayTransfer, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &ports.GatewayTransfer{FeeChargedMinor: g.feeMinor, RecipientType: "nuban"}, nil
}

// --- Rates ---

type fixedRates struct {
	rate decimal.Decimal
	err  error
}

func (r *fixedRates) Rate(context.Context, string, string) (decimal.Decimal, error) {
	if r.err != nil {
		return decimal.Zero, r.err
	}
	return r.rate, nil
}
