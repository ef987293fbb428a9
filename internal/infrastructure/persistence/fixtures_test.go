package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/profitpath/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixtureDate = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

func lineSpec(desc string, qty, price, rate int64) invoicing.LineSpec {
	return invoicing.LineSpec{
		Description: desc,
		HSNCode:     "9983",
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   decimal.NewFromInt(price),
		Discount:    decimal.Zero,
		GSTRate:     decimal.NewFromInt(rate),
	}
}

// createParty stores a customer party
func createParty(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) *partner.Party {
	t.Helper()
	p, err := partner.NewParty(tenantID, name, partner.Roles{IsCustomer: true})
	require.NoError(t, err)
	require.NoError(t, NewGormPartyRepository(db).Save(context.Background(), p))
	return p
}

// createDocument stores an intra-state invoice of 1000 + 18% GST = 1180
func createDocument(t *testing.T, db *gorm.DB, tenantID uuid.UUID, number string) *invoicing.Document {
	t.Helper()
	doc, err := invoicing.NewDocument(tenantID, invoicing.KindInvoice, number,
		invoicing.PartyRef{ID: uuid.New(), Name: "Acme Traders"},
		fixtureDate,
		[]invoicing.LineSpec{lineSpec("Consulting", 2, 500, 18)},
		invoicing.Pricing{IsIntraState: true, RoundOffPlaces: 0},
	)
	require.NoError(t, err)
	require.NoError(t, NewGormDocumentRepository(db).Save(context.Background(), doc))
	doc.PullDomainEvents()
	return doc
}

// appendPayment stores a cash payment against doc
func appendPayment(t *testing.T, db *gorm.DB, doc *invoicing.Document, amount int64, date time.Time) *ledger.PaymentEvent {
	t.Helper()
	p, err := ledger.NewPayment(doc, ledger.PaymentInput{
		Amount:      decimal.NewFromInt(amount),
		Method:      ledger.MethodCash,
		PaymentDate: date,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormPaymentLedger(db).Append(context.Background(), p))
	return p
}
