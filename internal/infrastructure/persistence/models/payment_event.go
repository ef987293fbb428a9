package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// PaymentEventModel is the persistence model for a payment ledger entry.
// Rows are inserted once and never updated.
type PaymentEventModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentKind    string          `gorm:"type:varchar(20);not null"`
	EntryType       string          `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentDate     time.Time       `gorm:"type:date;not null;index"`
	Method          string          `gorm:"type:varchar(20);not null"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:text"`
	ReversesID      *uuid.UUID      `gorm:"type:uuid;index"`
	ReversalReason  string          `gorm:"type:varchar(500)"`
	RecordedBy      *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentEventModel) TableName() string {
	return "payment_events"
}

// ToDomain converts the model to a domain PaymentEvent
func (m *PaymentEventModel) ToDomain() *ledger.PaymentEvent {
	return &ledger.PaymentEvent{
		ID:              m.ID,
		TenantID:        m.TenantID,
		DocumentID:      m.DocumentID,
		DocumentKind:    invoicing.DocumentKind(m.DocumentKind),
		EntryType:       ledger.EntryType(m.EntryType),
		Amount:          m.Amount,
		PaymentDate:     m.PaymentDate.UTC(),
		Method:          ledger.PaymentMethod(m.Method),
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		ReversesID:      m.ReversesID,
		ReversalReason:  m.ReversalReason,
		RecordedBy:      m.RecordedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// PaymentEventModelFromDomain creates a persistence model from a domain PaymentEvent
func PaymentEventModelFromDomain(e *ledger.PaymentEvent) *PaymentEventModel {
	return &PaymentEventModel{
		ID:              e.ID,
		TenantID:        e.TenantID,
		DocumentID:      e.DocumentID,
		DocumentKind:    string(e.DocumentKind),
		EntryType:       string(e.EntryType),
		Amount:          e.Amount,
		PaymentDate:     e.PaymentDate,
		Method:          string(e.Method),
		ReferenceNumber: e.ReferenceNumber,
		Notes:           e.Notes,
		ReversesID:      e.ReversesID,
		ReversalReason:  e.ReversalReason,
		RecordedBy:      e.RecordedBy,
		CreatedAt:       e.CreatedAt,
	}
}
