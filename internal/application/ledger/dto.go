package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest is the input of RecordPayment
type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Method          string          `json:"method" binding:"max=20"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes" binding:"max=1000"`
	PaymentDate     *time.Time      `json:"payment_date"`
	// AllowOverpayment overrides the configured default for this payment
	AllowOverpayment *bool      `json:"allow_overpayment"`
	IdempotencyKey   string     `json:"-"` // from the Idempotency-Key header
	RecordedBy       *uuid.UUID `json:"-"` // from JWT claims
}

// ReversePaymentRequest is the input of ReversePayment
type ReversePaymentRequest struct {
	Reason     string     `json:"reason" binding:"required,min=1,max=500"`
	ReversedBy *uuid.UUID `json:"-"`
}

// PaymentResponse is one ledger entry in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	DocumentID      uuid.UUID       `json:"document_id"`
	DocumentKind    string          `json:"document_kind"`
	EntryType       string          `json:"entry_type"`
	Amount          decimal.Decimal `json:"amount"`
	SignedAmount    decimal.Decimal `json:"signed_amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	Method          string          `json:"method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	ReversesID      *uuid.UUID      `json:"reverses_id,omitempty"`
	ReversalReason  string          `json:"reversal_reason,omitempty"`
	RecordedBy      *uuid.UUID      `json:"recorded_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a ledger entry to its response
func ToPaymentResponse(e *ledger.PaymentEvent) PaymentResponse {
	return PaymentResponse{
		ID:              e.ID,
		DocumentID:      e.DocumentID,
		DocumentKind:    string(e.DocumentKind),
		EntryType:       string(e.EntryType),
		Amount:          e.Amount,
		SignedAmount:    e.SignedAmount(),
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

// ToPaymentResponses converts a list of ledger entries
func ToPaymentResponses(events []ledger.PaymentEvent) []PaymentResponse {
	out := make([]PaymentResponse, len(events))
	for i := range events {
		out[i] = ToPaymentResponse(&events[i])
	}
	return out
}

// BalanceResponse is the reconciled balance of a document
type BalanceResponse struct {
	DocumentID    uuid.UUID       `json:"document_id"`
	Number        string          `json:"number"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Status        string          `json:"status"`
	ReconciledAt  *time.Time      `json:"reconciled_at,omitempty"`
	Version       int             `json:"version"`
}

// ToBalanceResponse extracts the balance view of a document
func ToBalanceResponse(d *invoicing.Document) BalanceResponse {
	return BalanceResponse{
		DocumentID:    d.ID,
		Number:        d.Number,
		GrandTotal:    d.GrandTotal,
		PaidAmount:    d.PaidAmount,
		BalanceAmount: d.BalanceAmount,
		Status:        string(d.Status),
		ReconciledAt:  d.ReconciledAt,
		Version:       d.Version,
	}
}

// PaymentResultResponse is returned by ledger mutations: the new entry and
// the document balance after reconcile
type PaymentResultResponse struct {
	Payment PaymentResponse `json:"payment"`
	Balance BalanceResponse `json:"balance"`
}
