package invoicing

import (
	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeDocument is the aggregate type name of Document
const AggregateTypeDocument = "Document"

// Event type constants
const (
	EventTypeDocumentCreated      = "DocumentCreated"
	EventTypeDocumentLinesUpdated = "DocumentLinesUpdated"
	EventTypeDocumentReconciled   = "DocumentReconciled"
	EventTypeDocumentCancelled    = "DocumentCancelled"
)

// DocumentCreatedEvent is published when an invoice or purchase is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID       `json:"document_id"`
	Number     string          `json:"number"`
	Kind       DocumentKind    `json:"kind"`
	PartyID    uuid.UUID       `json:"party_id"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(d *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeDocument, d.ID, d.TenantID),
		DocumentID:      d.ID,
		Number:          d.Number,
		Kind:            d.Kind,
		PartyID:         d.PartyID,
		GrandTotal:      d.GrandTotal,
	}
}

// DocumentLinesUpdatedEvent is published when lines, and so the grand total, change
type DocumentLinesUpdatedEvent struct {
	shared.BaseDomainEvent
	DocumentID    uuid.UUID       `json:"document_id"`
	OldGrandTotal decimal.Decimal `json:"old_grand_total"`
	NewGrandTotal decimal.Decimal `json:"new_grand_total"`
}

// NewDocumentLinesUpdatedEvent creates a new DocumentLinesUpdatedEvent
func NewDocumentLinesUpdatedEvent(d *Document, oldTotal decimal.Decimal) *DocumentLinesUpdatedEvent {
	return &DocumentLinesUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentLinesUpdated, AggregateTypeDocument, d.ID, d.TenantID),
		DocumentID:      d.ID,
		OldGrandTotal:   oldTotal,
		NewGrandTotal:   d.GrandTotal,
	}
}

// DocumentReconciledEvent is published when the paid amount changes
type DocumentReconciledEvent struct {
	shared.BaseDomainEvent
	DocumentID    uuid.UUID       `json:"document_id"`
	Kind          DocumentKind    `json:"kind"`
	OldPaidAmount decimal.Decimal `json:"old_paid_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Status        DocumentStatus  `json:"status"`
}

// NewDocumentReconciledEvent creates a new DocumentReconciledEvent
func NewDocumentReconciledEvent(d *Document, oldPaid decimal.Decimal) *DocumentReconciledEvent {
	return &DocumentReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentReconciled, AggregateTypeDocument, d.ID, d.TenantID),
		DocumentID:      d.ID,
		Kind:            d.Kind,
		OldPaidAmount:   oldPaid,
		PaidAmount:      d.PaidAmount,
		BalanceAmount:   d.BalanceAmount,
		Status:          d.Status,
	}
}

// DocumentCancelledEvent is published when a document is voided
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID `json:"document_id"`
	Number     string    `json:"number"`
	Reason     string    `json:"reason"`
}

// NewDocumentCancelledEvent creates a new DocumentCancelledEvent
func NewDocumentCancelledEvent(d *Document) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCancelled, AggregateTypeDocument, d.ID, d.TenantID),
		DocumentID:      d.ID,
		Number:          d.Number,
		Reason:          d.CancelReason,
	}
}
