package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPaymentLedger_AppendAndSum(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormPaymentLedger(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	doc := createDocument(t, db.DB, tenantID, "INV-2026-00001")

	first := appendPayment(t, db.DB, doc, 400, fixtureDate)
	appendPayment(t, db.DB, doc, 250, fixtureDate.AddDate(0, 0, 3))

	reversal, err := ledger.NewReversal(first, "cheque bounced", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, reversal))

	sum, err := repo.SumForDocument(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(250)), "sum %s", sum)

	count, err := repo.CountForDocument(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	events, err := repo.ListForDocument(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, ledger.EntryPayment, events[0].EntryType)
	assert.Equal(t, ledger.EntryReversal, events[1].EntryType, "reversal keeps the original payment date")
	require.NotNil(t, events[1].ReversesID)
	assert.Equal(t, first.ID, *events[1].ReversesID)

	reversed, err := repo.IsReversed(ctx, tenantID, first.ID)
	require.NoError(t, err)
	assert.True(t, reversed)

	sumOther, err := repo.SumForDocument(ctx, uuid.New(), doc.ID)
	require.NoError(t, err)
	assert.True(t, sumOther.IsZero())
}

func TestGormPaymentLedger_FindByIDForTenant(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormPaymentLedger(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	doc := createDocument(t, db.DB, tenantID, "INV-2026-00001")
	payment := appendPayment(t, db.DB, doc, 100, fixtureDate)

	found, err := repo.FindByIDForTenant(ctx, tenantID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, found.DocumentID)
	assert.Equal(t, ledger.MethodCash, found.Method)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, found.PaymentDate.Equal(fixtureDate))

	_, err = repo.FindByIDForTenant(ctx, uuid.New(), payment.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPaymentLedger_ListInRange(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormPaymentLedger(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	doc := createDocument(t, db.DB, tenantID, "INV-2026-00001")

	appendPayment(t, db.DB, doc, 100, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	appendPayment(t, db.DB, doc, 200, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	appendPayment(t, db.DB, doc, 300, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC))
	appendPayment(t, db.DB, doc, 400, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))

	events, err := repo.ListInRange(ctx, tenantID,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Amount.Equal(decimal.NewFromInt(200)))
	assert.True(t, events[1].Amount.Equal(decimal.NewFromInt(300)))
}

func TestGormPaymentLedger_DeleteLegacy(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormPaymentLedger(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	doc := createDocument(t, db.DB, tenantID, "INV-2026-00001")
	payment := appendPayment(t, db.DB, doc, 100, fixtureDate)

	assert.ErrorIs(t, repo.DeleteLegacy(ctx, uuid.New(), payment.ID), shared.ErrNotFound)
	require.NoError(t, repo.DeleteLegacy(ctx, tenantID, payment.ID))
	assert.ErrorIs(t, repo.DeleteLegacy(ctx, tenantID, payment.ID), shared.ErrNotFound)

	count, err := repo.CountForDocument(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
