package service

import (
	"context"
	"testing"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"
	"crowdfund-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reconTestDeps struct {
	svc    *ReconciliationServiceImpl
	ledger *mocks.MockLedgerRepository
	holder *mocks.MockBalanceHolder
	ctrl   *gomock.Controller
}

func setupRecon(t *testing.T) *reconTestDeps {
	ctrl := gomock.NewController(t)
	d := &reconTestDeps{
		ledger: mocks.NewMockLedgerRepository(ctrl),
		holder: mocks.NewMockBalanceHolder(ctrl),
		ctrl:   ctrl,
	}
	d.holder.EXPECT().Kind().Return(domain.HolderKindCampaign).AnyTimes()
	d.svc = NewReconciliationService(d.ledger, []ports.BalanceHolder{d.holder}, zerolog.Nop())
	return d
}

func TestReconciliationService_ListEntries_ClampsPaging(t *testing.T) {
	d := setupRecon(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	holder := domain.HolderRef{Kind: domain.HolderKindCampaign, ID: uuid.New()}

	// page < 1 and pageSize < 1 fall back to defaults
	d.ledger.EXPECT().ListByHolder(ctx, holder, 50, 0).Return([]domain.LedgerEntry{}, nil)
	_, err := d.svc.ListEntries(ctx, holder, 0, 0)
	require.NoError(t, err)

	// oversized pageSize is capped
	d.ledger.EXPECT().ListByHolder(ctx, holder, 200, 200).Return([]domain.LedgerEntry{}, nil)
	_, err = d.svc.ListEntries(ctx, holder, 2, 5000)
	require.NoError(t, err)
}

func TestReconciliationService_CheckHolder_Consistent(t *testing.T) {
	d := setupRecon(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	holder := domain.HolderRef{Kind: domain.HolderKindCampaign, ID: uuid.New()}

	d.holder.EXPECT().Get(ctx, holder.ID).Return(&ports.HolderState{
		Balance:  decimal.NewFromInt(950),
		Currency: "NGN",
	}, nil)
	d.ledger.EXPECT().SumByHolder(ctx, holder).Return(decimal.NewFromInt(950), nil)
	d.ledger.EXPECT().CountByHolder(ctx, holder).Return(int64(3), nil)

	report, err := d.svc.CheckHolder(ctx, holder)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, int64(3), report.Entries)
	assert.True(t, report.Balance.Equal(report.LedgerSum))
}

func TestReconciliationService_CheckHolder_Mismatch(t *testing.T) {
	d := setupRecon(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	holder := domain.HolderRef{Kind: domain.HolderKindCampaign, ID: uuid.New()}

	d.holder.EXPECT().Get(ctx, holder.ID).Return(&ports.HolderState{
		Balance: decimal.NewFromInt(1000),
	}, nil)
	d.ledger.EXPECT().SumByHolder(ctx, holder).Return(decimal.NewFromInt(950), nil)
	d.ledger.EXPECT().CountByHolder(ctx, holder).Return(int64(3), nil)

	report, err := d.svc.CheckHolder(ctx, holder)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
}

func TestReconciliationService_CheckHolder_UnknownKind(t *testing.T) {
	d := setupRecon(t)
	defer d.ctrl.Finish()

	holder := domain.HolderRef{Kind: domain.HolderKindWallet, ID: uuid.New()}
	_, err := d.svc.CheckHolder(context.Background(), holder)
	assertAppError(t, err, "SET_003")
}

func TestReconciliationService_CheckHolder_HolderMissing(t *testing.T) {
	d := setupRecon(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	holder := domain.HolderRef{Kind: domain.HolderKindCampaign, ID: uuid.New()}
	d.holder.EXPECT().Get(ctx, holder.ID).Return(nil, nil)

	_, err := d.svc.CheckHolder(ctx, holder)
	assertAppError(t, err, "SET_004")
}
