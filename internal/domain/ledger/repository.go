package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentLedger is the append-only store of payment events.
// Events are never updated in place.
type PaymentLedger interface {
	// Append inserts a new event
	Append(ctx context.Context, event *PaymentEvent) error

	// FindByIDForTenant finds a single event
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentEvent, error)

	// ListForDocument returns all events of a document ordered by payment date, then created_at
	ListForDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]PaymentEvent, error)

	// SumForDocument returns the signed sum of all events of a document
	SumForDocument(ctx context.Context, tenantID, documentID uuid.UUID) (decimal.Decimal, error)

	// CountForDocument counts events of any type for a document
	CountForDocument(ctx context.Context, tenantID, documentID uuid.UUID) (int64, error)

	// IsReversed reports whether a payment already has a reversal
	IsReversed(ctx context.Context, tenantID, paymentID uuid.UUID) (bool, error)

	// ListInRange returns events with from <= payment_date <= to
	ListInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]PaymentEvent, error)

	// DeleteLegacy physically removes a payment event. Kept only for clients of
	// the old delete endpoint.
	DeleteLegacy(ctx context.Context, tenantID, id uuid.UUID) error
}
