// Package ledger holds the append-only payment ledger. Every payment against
// an invoice or purchase is an immutable PaymentEvent; corrections are new
// REVERSAL events that reference the payment they undo.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntryType distinguishes payments from their reversals
type EntryType string

const (
	EntryPayment  EntryType = "PAYMENT"
	EntryReversal EntryType = "REVERSAL"
)

// PaymentMethod is how money moved
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodUPI          PaymentMethod = "UPI"
	MethodCheque       PaymentMethod = "CHEQUE"
	MethodCard         PaymentMethod = "CARD"
	MethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodUPI, MethodCheque, MethodCard, MethodOther:
		return true
	}
	return false
}

// ParsePaymentMethod parses a method, case-insensitively. Empty means CASH.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return MethodCash, nil
	}
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "unknown payment method "+s)
	}
	return m, nil
}

// PaymentEvent is one immutable entry of the payment ledger
type PaymentEvent struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	DocumentID      uuid.UUID
	DocumentKind    invoicing.DocumentKind
	EntryType       EntryType
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Method          PaymentMethod
	ReferenceNumber string
	Notes           string
	ReversesID      *uuid.UUID
	ReversalReason  string
	RecordedBy      *uuid.UUID
	CreatedAt       time.Time
}

// PaymentInput is the caller supplied part of a new payment
type PaymentInput struct {
	Amount          decimal.Decimal
	Method          PaymentMethod
	ReferenceNumber string
	Notes           string
	PaymentDate     time.Time
	RecordedBy      *uuid.UUID
}

// NewPayment creates a PAYMENT event for a document
func NewPayment(doc *invoicing.Document, in PaymentInput) (*PaymentEvent, error) {
	if !in.Amount.IsPositive() {
		return nil, shared.ErrInvalidPaymentAmount
	}
	if !in.Method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "unknown payment method")
	}
	if len(in.ReferenceNumber) > 100 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "reference number cannot exceed 100 characters")
	}
	date := in.PaymentDate
	if date.IsZero() {
		date = time.Now().UTC()
	}

	return &PaymentEvent{
		ID:              uuid.New(),
		TenantID:        doc.TenantID,
		DocumentID:      doc.ID,
		DocumentKind:    doc.Kind,
		EntryType:       EntryPayment,
		Amount:          in.Amount,
		PaymentDate:     dateOnly(date),
		Method:          in.Method,
		ReferenceNumber: strings.TrimSpace(in.ReferenceNumber),
		Notes:           in.Notes,
		RecordedBy:      in.RecordedBy,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// NewReversal creates a REVERSAL event undoing original. The reversal keeps the
// original payment date so period totals read as if the payment never happened;
// CreatedAt records when the reversal was made.
func NewReversal(original *PaymentEvent, reason string, by *uuid.UUID) (*PaymentEvent, error) {
	if original.EntryType != EntryPayment {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "only payments can be reversed")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "reversal reason is required")
	}
	originalID := original.ID
	return &PaymentEvent{
		ID:              uuid.New(),
		TenantID:        original.TenantID,
		DocumentID:      original.DocumentID,
		DocumentKind:    original.DocumentKind,
		EntryType:       EntryReversal,
		Amount:          original.Amount,
		PaymentDate:     original.PaymentDate,
		Method:          original.Method,
		ReferenceNumber: original.ReferenceNumber,
		ReversesID:      &originalID,
		ReversalReason:  reason,
		RecordedBy:      by,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// SignedAmount is +Amount for payments and -Amount for reversals
func (e *PaymentEvent) SignedAmount() decimal.Decimal {
	if e.EntryType == EntryReversal {
		return e.Amount.Neg()
	}
	return e.Amount
}

// IsReversal returns true for reversal entries
func (e *PaymentEvent) IsReversal() bool {
	return e.EntryType == EntryReversal
}

// Sum returns the net paid amount of a set of events
func Sum(events []PaymentEvent) decimal.Decimal {
	total := decimal.Zero
	for i := range events {
		total = total.Add(events[i].SignedAmount())
	}
	return total
}

// SortForDisplay orders events by payment date, then creation time
func SortForDisplay(events []PaymentEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].PaymentDate.Equal(events[j].PaymentDate) {
			return events[i].PaymentDate.Before(events[j].PaymentDate)
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
