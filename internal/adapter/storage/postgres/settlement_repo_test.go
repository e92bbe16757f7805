package postgres

import (
	"context"
	"testing"
	"time"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordColumns() []string {
	return []string{"id", "reference", "gateway_reference", "direction", "amount", "currency",
		"status", "gateway_fee", "platform_fee", "channel", "authorization_code",
		"holder_kind", "holder_id", "settled_at", "created_at", "updated_at"}
}

func newSettleUpdate() ports.SettleUpdate {
	return ports.SettleUpdate{
		Reference:         "cf_ref_001",
		GatewayReference:  987654,
		Amount:            decimal.NewFromInt(1000),
		GatewayFee:        decimal.NewFromInt(150),
		PlatformFee:       decimal.NewFromInt(50),
		Channel:           "card",
		AuthorizationCode: "AUTH_abc",
		SettledAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestSettlementRepo_GetByReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.New()
	holderID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM settlement_records WHERE reference").
		WithArgs("cf_ref_001").
		WillReturnRows(pgxmock.NewRows(recordColumns()).AddRow(
			id, "cf_ref_001", (*int64)(nil), domain.DirectionIn,
			decimal.NewFromInt(1000), "NGN", domain.SettlementStatusPending,
			decimal.Zero, decimal.Zero, (*string)(nil), (*string)(nil),
			domain.HolderKindCampaign, holderID, (*time.Time)(nil), now, now,
		))

	rec, err := repo.GetByReference(context.Background(), "cf_ref_001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, domain.SettlementStatusPending, rec.Status)
	assert.Equal(t, domain.HolderKindCampaign, rec.Holder.Kind)
	assert.Equal(t, holderID, rec.Holder.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_GetByReference_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM settlement_records WHERE reference").
		WithArgs("cf_missing").
		WillReturnRows(pgxmock.NewRows(recordColumns()))

	rec, err := repo.GetByReference(context.Background(), "cf_missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSettlementRepo_Settle_PendingRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	u := newSettleUpdate()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE settlement_records").
		WithArgs(
			u.Reference, domain.SettlementStatusSettled, u.GatewayReference,
			u.Amount, u.GatewayFee, u.PlatformFee, u.Channel, u.AuthorizationCode,
			u.SettledAt, domain.SettlementStatusPending,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	settled, err := repo.Settle(context.Background(), tx, u)
	require.NoError(t, err)
	assert.True(t, settled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_Settle_AlreadyTerminal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	u := newSettleUpdate()

	mock.ExpectBegin()
	// Guard on status=pending matched no rows: another delivery won.
	mock.ExpectExec("UPDATE settlement_records").
		WithArgs(
			u.Reference, domain.SettlementStatusSettled, u.GatewayReference,
			u.Amount, u.GatewayFee, u.PlatformFee, u.Channel, u.AuthorizationCode,
			u.SettledAt, domain.SettlementStatusPending,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	settled, err := repo.Settle(context.Background(), tx, u)
	require.NoError(t, err)
	assert.False(t, settled)
}

func TestSettlementRepo_MarkFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)

	mock.ExpectExec("UPDATE settlement_records").
		WithArgs("cf_ref_001", domain.SettlementStatusFailed, domain.SettlementStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	failed, err := repo.MarkFailed(context.Background(), "cf_ref_001")
	require.NoError(t, err)
	assert.True(t, failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_MarkFailed_AlreadyTerminal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)

	mock.ExpectExec("UPDATE settlement_records").
		WithArgs("cf_ref_001", domain.SettlementStatusFailed, domain.SettlementStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	failed, err := repo.MarkFailed(context.Background(), "cf_ref_001")
	require.NoError(t, err)
	assert.False(t, failed)
}
