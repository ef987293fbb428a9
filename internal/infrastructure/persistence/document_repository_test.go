package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDocumentRepository_SaveAndFind(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormDocumentRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	doc, err := invoicing.NewDocument(tenantID, invoicing.KindInvoice, "INV-2026-00001",
		invoicing.PartyRef{ID: uuid.New(), Name: "Acme Traders"},
		fixtureDate,
		[]invoicing.LineSpec{lineSpec("Design", 1, 300, 5), lineSpec("Build", 2, 350, 18)},
		invoicing.Pricing{IsIntraState: false},
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, doc))
	assert.False(t, doc.LinesChanged())

	found, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", found.Number)
	assert.Equal(t, invoicing.StatusOpen, found.Status)
	assert.True(t, found.GrandTotal.Equal(doc.GrandTotal), "grand total %s", found.GrandTotal)
	assert.True(t, found.BalanceAmount.Equal(doc.GrandTotal))
	require.Len(t, found.Lines, 2)
	assert.Equal(t, "Design", found.Lines[0].Description)
	assert.Equal(t, "Build", found.Lines[1].Description)
	assert.True(t, found.UTGST.IsPositive())
	assert.True(t, found.CGST.IsZero())

	t.Run("other tenant cannot see it", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), doc.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("for update loads lines", func(t *testing.T) {
		locked, err := repo.FindByIDForUpdate(ctx, tenantID, doc.ID)
		require.NoError(t, err)
		assert.Len(t, locked.Lines, 2)
		assert.Equal(t, doc.Version, locked.Version)
	})
}

func TestGormDocumentRepository_SaveWithLock(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormDocumentRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	doc := createDocument(t, db.DB, tenantID, "INV-2026-00001")

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	expected := loaded.Version
	require.NoError(t, loaded.ReplaceLines([]invoicing.LineSpec{
		lineSpec("Consulting", 3, 500, 18),
		lineSpec("Travel", 1, 200, 0),
	}, 0))
	require.NoError(t, repo.SaveWithLock(ctx, loaded, expected))

	reloaded, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, expected+1, reloaded.Version)
	require.Len(t, reloaded.Lines, 2)
	assert.Equal(t, "Travel", reloaded.Lines[1].Description)
	assert.True(t, reloaded.GrandTotal.Equal(decimal.NewFromInt(1970)), "grand total %s", reloaded.GrandTotal)

	t.Run("stale version conflicts", func(t *testing.T) {
		err := repo.SaveWithLock(ctx, loaded, expected)
		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeConcurrencyConflict, de.Code)
	})
}

func TestGormDocumentRepository_FindAllForTenant(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormDocumentRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	createDocument(t, db.DB, tenantID, "INV-2026-00001")
	createDocument(t, db.DB, tenantID, "INV-2026-00002")
	createDocument(t, db.DB, uuid.New(), "INV-2026-00003")

	docs, total, err := repo.FindAllForTenant(ctx, tenantID, invoicing.DocumentFilter{
		Filter: shared.Filter{Page: 1, PageSize: 1, OrderBy: "number", OrderDir: "asc"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, docs, 1)
	assert.Equal(t, "INV-2026-00001", docs[0].Number)
	assert.Empty(t, docs[0].Lines)

	docs, total, err = repo.FindAllForTenant(ctx, tenantID, invoicing.DocumentFilter{
		Filter: shared.Filter{Search: "00002"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, docs, 1)

	_, total, err = repo.FindAllForTenant(ctx, tenantID, invoicing.DocumentFilter{Status: invoicing.StatusPaid})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormDocumentRepository_GenerateNumber(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormDocumentRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	at := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	first, err := repo.GenerateNumber(ctx, tenantID, invoicing.KindInvoice, at)
	require.NoError(t, err)
	second, err := repo.GenerateNumber(ctx, tenantID, invoicing.KindInvoice, at)
	require.NoError(t, err)
	purchase, err := repo.GenerateNumber(ctx, tenantID, invoicing.KindPurchase, at)
	require.NoError(t, err)
	nextYear, err := repo.GenerateNumber(ctx, tenantID, invoicing.KindInvoice, at.AddDate(1, 0, 0))
	require.NoError(t, err)
	otherTenant, err := repo.GenerateNumber(ctx, uuid.New(), invoicing.KindInvoice, at)
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-00001", first)
	assert.Equal(t, "INV-2026-00002", second)
	assert.Equal(t, "PUR-2026-00001", purchase)
	assert.Equal(t, "INV-2027-00001", nextYear)
	assert.Equal(t, "INV-2026-00001", otherTenant)
}

func TestGormDocumentRepository_Delete(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormDocumentRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	doc := createDocument(t, db.DB, tenantID, "INV-2026-00001")

	require.NoError(t, repo.Delete(ctx, tenantID, doc.ID))
	_, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, tenantID, doc.ID), shared.ErrNotFound)

	var lines int64
	require.NoError(t, db.DB.Table("document_lines").Where("document_id = ?", doc.ID).Count(&lines).Error)
	assert.Zero(t, lines)
}

func TestGormDocumentRepository_FindStale(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormDocumentRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	fresh := createDocument(t, db.DB, tenantID, "INV-2026-00001")
	stale := createDocument(t, db.DB, tenantID, "INV-2026-00002")

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, stale.ID)
	require.NoError(t, err)
	expected := loaded.Version
	loaded.MarkLedgerActivity(time.Now().UTC().Add(time.Minute))
	require.NoError(t, repo.SaveWithLock(ctx, loaded, expected))

	refs, err := repo.FindStale(ctx, uuid.Nil, 10)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, stale.ID, refs[0].ID)
	assert.Equal(t, tenantID, refs[0].TenantID)
	assert.NotEqual(t, fresh.ID, refs[0].ID)

	refs, err = repo.FindStale(ctx, stale.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestGormDocumentRepository_FindByIDForUpdate_SQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormDocumentRepository(db.DB)
	tenantID, docID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "documents" WHERE .*tenant_id = \$1 AND id = \$2.* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "number", "kind", "status", "version"}).
			AddRow(docID.String(), tenantID.String(), "INV-2026-00001", "INVOICE", "OPEN", 3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "document_lines" WHERE document_id = $1 ORDER BY position ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "position", "description"}))

	doc, err := repo.FindByIDForUpdate(context.Background(), tenantID, docID)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Version)
	assert.Equal(t, invoicing.KindInvoice, doc.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDocumentRepository_SaveWithLock_SQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormDocumentRepository(db.DB)

	doc, err := invoicing.NewDocument(uuid.New(), invoicing.KindInvoice, "INV-2026-00009",
		invoicing.PartyRef{ID: uuid.New(), Name: "Acme"}, fixtureDate,
		[]invoicing.LineSpec{lineSpec("Consulting", 1, 100, 18)},
		invoicing.Pricing{IsIntraState: true})
	require.NoError(t, err)
	doc.MarkLinesPersisted()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "documents" SET .* WHERE .*version = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.SaveWithLock(context.Background(), doc, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
