//go:build integration

package persistence

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appledger "github.com/profitpath/backend/internal/application/ledger"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/infrastructure/cache"
	"github.com/profitpath/backend/internal/infrastructure/config"
	"github.com/profitpath/backend/internal/infrastructure/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, ...shared.DomainEvent) error { return nil }

// newPostgresDatabase starts a PostgreSQL container and applies the SQL
// migrations of the repository
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("profitpath_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "profitpath_test",
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	})
	require.NoError(t, err)

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	migrationsPath, err := filepath.Abs(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrationsPath, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	// the migrator owns sqlDB now; closing it closes the pool
	t.Cleanup(func() { _ = m.Close() })

	return db
}

// storeInvoice saves a party and a 1180 invoice that references it
func storeInvoice(t *testing.T, db *Database, tenantID uuid.UUID, number string) *invoicing.Document {
	t.Helper()
	party := createParty(t, db.DB, tenantID, "Acme Traders")
	doc, err := invoicing.NewDocument(tenantID, invoicing.KindInvoice, number,
		invoicing.PartyRef{ID: party.ID, Name: party.Name},
		fixtureDate,
		[]invoicing.LineSpec{lineSpec("Consulting", 2, 500, 18)},
		invoicing.Pricing{IsIntraState: true},
	)
	require.NoError(t, err)
	require.NoError(t, NewGormDocumentRepository(db.DB).Save(context.Background(), doc))
	doc.PullDomainEvents()
	return doc
}

func TestPostgres_LedgerRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}
	db := newPostgresDatabase(t)
	ctx := context.Background()
	tenantID := uuid.New()
	doc := storeInvoice(t, db, tenantID, "INV-2026-00001")
	payments := NewGormPaymentLedger(db.DB)

	first := appendPayment(t, db.DB, doc, 400, fixtureDate)
	appendPayment(t, db.DB, doc, 250, fixtureDate.AddDate(0, 0, 3))
	reversal, err := ledger.NewReversal(first, "cheque bounced", nil)
	require.NoError(t, err)
	require.NoError(t, payments.Append(ctx, reversal))

	sum, err := payments.SumForDocument(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(250)), "sum %s", sum)

	reversed, err := payments.IsReversed(ctx, tenantID, first.ID)
	require.NoError(t, err)
	assert.True(t, reversed)

	inRange, err := payments.ListInRange(ctx, tenantID, fixtureDate, fixtureDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, inRange, 2, "the payment and its reversal share a date")
}

func TestPostgres_SaveWithLockConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}
	db := newPostgresDatabase(t)
	ctx := context.Background()
	tenantID := uuid.New()
	doc := storeInvoice(t, db, tenantID, "INV-2026-00001")
	repo := NewGormDocumentRepository(db.DB)

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	expected := loaded.Version
	require.NoError(t, loaded.ReplaceLines([]invoicing.LineSpec{lineSpec("Consulting", 3, 500, 18)}, 0))
	require.NoError(t, repo.SaveWithLock(ctx, loaded, expected))

	err = repo.SaveWithLock(ctx, loaded, expected)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, shared.CodeConcurrencyConflict, de.Code)
}

func TestPostgres_ConcurrentPayments(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}
	db := newPostgresDatabase(t)
	ctx := context.Background()
	tenantID := uuid.New()
	doc := storeInvoice(t, db, tenantID, "INV-2026-00001")

	reconciler := appledger.NewReconciler(NewGormTransactionScope(db.DB), cache.NewInMemoryLocker(),
		discardPublisher{}, zap.NewNop(), appledger.Options{})
	service := appledger.NewPaymentService(reconciler, cache.NewInMemoryIdempotencyStore(time.Minute),
		appledger.PaymentFeatures{}, time.Minute, zap.NewNop())

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RecordPayment(ctx, tenantID, doc.ID, appledger.RecordPaymentRequest{
				Amount: decimal.NewFromInt(100),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reloaded, err := NewGormDocumentRepository(db.DB).FindByIDForTenant(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.PaidAmount.Equal(decimal.NewFromInt(1000)), "paid %s", reloaded.PaidAmount)
	assert.True(t, reloaded.BalanceAmount.Equal(decimal.NewFromInt(180)), "balance %s", reloaded.BalanceAmount)

	count, err := NewGormPaymentLedger(db.DB).CountForDocument(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), count)
}
