package ledger

import (
	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypePayment is the aggregate type name used for ledger events
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypePaymentReversed = "PaymentReversed"
	EventTypePaymentDeleted  = "PaymentDeleted"
)

// PaymentRecordedEvent is published after a payment is appended
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID              `json:"payment_id"`
	DocumentID   uuid.UUID              `json:"document_id"`
	DocumentKind invoicing.DocumentKind `json:"document_kind"`
	Amount       decimal.Decimal        `json:"amount"`
	Method       PaymentMethod          `json:"method"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(e *PaymentEvent) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, e.ID, e.TenantID),
		PaymentID:       e.ID,
		DocumentID:      e.DocumentID,
		DocumentKind:    e.DocumentKind,
		Amount:          e.Amount,
		Method:          e.Method,
	}
}

// PaymentReversedEvent is published after a reversal is appended
type PaymentReversedEvent struct {
	shared.BaseDomainEvent
	ReversalID   uuid.UUID              `json:"reversal_id"`
	PaymentID    uuid.UUID              `json:"payment_id"`
	DocumentID   uuid.UUID              `json:"document_id"`
	DocumentKind invoicing.DocumentKind `json:"document_kind"`
	Amount       decimal.Decimal        `json:"amount"`
	Reason       string                 `json:"reason"`
}

// NewPaymentReversedEvent creates a new PaymentReversedEvent
func NewPaymentReversedEvent(reversal *PaymentEvent) *PaymentReversedEvent {
	var original uuid.UUID
	if reversal.ReversesID != nil {
		original = *reversal.ReversesID
	}
	return &PaymentReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReversed, AggregateTypePayment, original, reversal.TenantID),
		ReversalID:      reversal.ID,
		PaymentID:       original,
		DocumentID:      reversal.DocumentID,
		DocumentKind:    reversal.DocumentKind,
		Amount:          reversal.Amount,
		Reason:          reversal.ReversalReason,
	}
}

// PaymentDeletedEvent is published when the legacy hard delete removed a payment
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	DocumentID uuid.UUID       `json:"document_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(e *PaymentEvent) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, AggregateTypePayment, e.ID, e.TenantID),
		PaymentID:       e.ID,
		DocumentID:      e.DocumentID,
		Amount:          e.Amount,
	}
}
