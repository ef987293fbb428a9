package invoicing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(desc, qty, price, rate string) LineSpec {
	return LineSpec{Description: desc, Quantity: dec(qty), UnitPrice: dec(price), GSTRate: dec(rate)}
}

func newTestDocument(t *testing.T, kind DocumentKind, pricing Pricing, specs ...LineSpec) *Document {
	t.Helper()
	doc, err := NewDocument(uuid.New(), kind, "INV-2026-00001",
		PartyRef{ID: uuid.New(), Name: "Sharma Traders"},
		time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC), specs, pricing)
	require.NoError(t, err)
	return doc
}

func TestNewDocument(t *testing.T) {
	doc := newTestDocument(t, KindInvoice, Pricing{IsIntraState: true},
		line("Steel rods", "10", "84.75", "18"))

	assert.True(t, dec("847.50").Equal(doc.Subtotal))
	assert.True(t, dec("76.28").Equal(doc.CGST), "cgst %s", doc.CGST)
	assert.True(t, doc.CGST.Equal(doc.SGST))
	assert.True(t, doc.UTGST.IsZero())
	assert.True(t, dec("1000").Equal(doc.GrandTotal), "grand %s", doc.GrandTotal)
	assert.True(t, doc.Tax().Verify())
	assert.True(t, doc.PaidAmount.IsZero())
	assert.True(t, doc.BalanceAmount.Equal(doc.GrandTotal))
	assert.Equal(t, StatusOpen, doc.Status)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), doc.DocumentDate)
	assert.False(t, doc.NeedsReconcile())
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, 1, doc.Lines[0].Position)
	assert.True(t, doc.LinesChanged())
	require.Len(t, doc.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeDocumentCreated, doc.GetDomainEvents()[0].EventType())
}

func TestNewDocument_Validation(t *testing.T) {
	party := PartyRef{ID: uuid.New(), Name: "X"}
	date := time.Now()

	_, err := NewDocument(uuid.New(), "QUOTE", "Q-1", party, date, []LineSpec{line("a", "1", "1", "5")}, Pricing{})
	assert.Error(t, err)

	_, err = NewDocument(uuid.New(), KindInvoice, "INV-1", party, date, nil, Pricing{})
	assert.Error(t, err)

	_, err = NewDocument(uuid.New(), KindInvoice, "INV-1", PartyRef{}, date, []LineSpec{line("a", "1", "1", "5")}, Pricing{})
	assert.Error(t, err)

	_, err = NewDocument(uuid.New(), KindInvoice, "INV-1", party, date, []LineSpec{line("a", "1", "1", "150")}, Pricing{})
	assert.True(t, errors.Is(err, shared.ErrInvalidTaxInput))
}

func TestDocument_ValidatePayment(t *testing.T) {
	doc := newTestDocument(t, KindInvoice, Pricing{IsIntraState: false}, line("Service", "1", "1000", "0"))
	require.True(t, dec("1000").Equal(doc.GrandTotal))

	assert.True(t, errors.Is(doc.ValidatePayment(dec("0"), false), shared.ErrInvalidPaymentAmount))
	assert.True(t, errors.Is(doc.ValidatePayment(dec("-5"), true), shared.ErrInvalidPaymentAmount))
	assert.NoError(t, doc.ValidatePayment(dec("1000"), false))
	assert.True(t, errors.Is(doc.ValidatePayment(dec("1000.01"), false), shared.ErrOverpaymentRejected))
	assert.NoError(t, doc.ValidatePayment(dec("1500"), true))

	doc.Reconcile(dec("1000"), time.Now())
	assert.True(t, errors.Is(doc.ValidatePayment(dec("1"), false), shared.ErrOverpaymentRejected))
	assert.NoError(t, doc.ValidatePayment(dec("1"), true))
}

func TestDocument_Reconcile(t *testing.T) {
	doc := newTestDocument(t, KindInvoice, Pricing{}, line("Service", "1", "1000", "0"))
	version := doc.GetVersion()

	now := time.Now()
	doc.MarkLedgerActivity(now)
	require.True(t, doc.Reconcile(dec("600"), now))
	assert.True(t, dec("600").Equal(doc.PaidAmount))
	assert.True(t, dec("400").Equal(doc.BalanceAmount))
	assert.Equal(t, StatusPartial, doc.Status)
	assert.Equal(t, version+1, doc.GetVersion())

	assert.False(t, doc.Reconcile(dec("600"), time.Now()), "second reconcile is a no-op")
	assert.Equal(t, version+1, doc.GetVersion())

	require.True(t, doc.Reconcile(dec("1000"), time.Now()))
	assert.True(t, doc.BalanceAmount.IsZero())
	assert.Equal(t, StatusPaid, doc.Status)

	require.True(t, doc.Reconcile(dec("1200"), time.Now()))
	assert.True(t, dec("-200").Equal(doc.BalanceAmount))
	assert.Equal(t, StatusOverpaid, doc.Status)

	require.True(t, doc.Reconcile(dec("0"), time.Now()))
	assert.Equal(t, StatusOpen, doc.Status)
	assert.True(t, doc.PaidAmount.Add(doc.BalanceAmount).Equal(doc.GrandTotal))
}

func TestDocument_ReconcileStampsStaleDocument(t *testing.T) {
	doc := newTestDocument(t, KindPurchase, Pricing{}, line("Raw material", "1", "250", "0"))
	later := doc.ReconciledAt.Add(time.Minute)
	doc.MarkLedgerActivity(later)
	require.True(t, doc.NeedsReconcile())

	assert.True(t, doc.Reconcile(dec("0"), later))
	assert.False(t, doc.NeedsReconcile())
}

func TestDocument_ReplaceLines(t *testing.T) {
	t.Run("recomputes balance", func(t *testing.T) {
		doc := newTestDocument(t, KindInvoice, Pricing{}, line("Service", "1", "1000", "0"))
		doc.Reconcile(dec("600"), time.Now())

		require.NoError(t, doc.ReplaceLines([]LineSpec{line("Service", "1", "800", "0")}, 0))
		assert.True(t, dec("800").Equal(doc.GrandTotal))
		assert.True(t, dec("200").Equal(doc.BalanceAmount))
		assert.Equal(t, StatusPartial, doc.Status)
	})

	t.Run("total below paid is a conflict", func(t *testing.T) {
		doc := newTestDocument(t, KindInvoice, Pricing{}, line("Service", "1", "1000", "0"))
		doc.Reconcile(dec("600"), time.Now())
		version := doc.GetVersion()

		err := doc.ReplaceLines([]LineSpec{line("Service", "1", "500", "0")}, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrBalanceConflict))
		assert.True(t, dec("1000").Equal(doc.GrandTotal), "document unchanged")
		assert.True(t, dec("400").Equal(doc.BalanceAmount))
		assert.Equal(t, version, doc.GetVersion())
	})

	t.Run("cancelled documents are frozen", func(t *testing.T) {
		doc := newTestDocument(t, KindInvoice, Pricing{}, line("Service", "1", "1000", "0"))
		require.NoError(t, doc.Cancel("duplicate"))
		err := doc.ReplaceLines([]LineSpec{line("Service", "1", "10", "0")}, 0)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestDocument_Cancel(t *testing.T) {
	doc := newTestDocument(t, KindInvoice, Pricing{}, line("Service", "1", "1000", "0"))
	doc.Reconcile(dec("100"), time.Now())

	err := doc.Cancel("customer backed out")
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, shared.CodeDocumentHasPayments, de.Code)

	doc.Reconcile(dec("0"), time.Now())
	assert.Error(t, doc.Cancel("  "))
	require.NoError(t, doc.Cancel("customer backed out"))
	assert.Equal(t, StatusCancelled, doc.Status)
	assert.NotNil(t, doc.CancelledAt)
	assert.Error(t, doc.Cancel("again"))

	assert.True(t, errors.Is(doc.ValidatePayment(dec("1"), true), shared.ErrInvalidState))
}

func TestDocument_WithCess(t *testing.T) {
	spec := line("Aerated drinks", "100", "20", "28")
	spec.Cess = tax.Cess{Kind: tax.CessPercent, Value: dec("12")}
	doc := newTestDocument(t, KindInvoice, Pricing{IsIntraState: false, RoundOffPlaces: 0}, spec)

	assert.True(t, dec("2000").Equal(doc.Subtotal))
	assert.True(t, dec("560").Equal(doc.UTGST))
	assert.True(t, dec("240").Equal(doc.Cess))
	assert.True(t, dec("2800").Equal(doc.GrandTotal))
}

func TestDocument_IsOverdue(t *testing.T) {
	doc := newTestDocument(t, KindInvoice, Pricing{}, line("Service", "1", "1000", "0"))
	due := doc.DocumentDate.AddDate(0, 0, 30)
	require.NoError(t, doc.SetDueDate(&due))

	assert.False(t, doc.IsOverdue(due))
	assert.True(t, doc.IsOverdue(due.AddDate(0, 0, 1)))

	before := doc.DocumentDate.AddDate(0, 0, -1)
	assert.Error(t, doc.SetDueDate(&before))
}
