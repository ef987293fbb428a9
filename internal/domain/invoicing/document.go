package invoicing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes sales invoices from purchase bills
type DocumentKind string

const (
	KindInvoice  DocumentKind = "INVOICE"
	KindPurchase DocumentKind = "PURCHASE"
)

// IsValid checks if the kind is known
func (k DocumentKind) IsValid() bool {
	return k == KindInvoice || k == KindPurchase
}

// NumberPrefix returns the prefix used for generated document numbers
func (k DocumentKind) NumberPrefix() string {
	if k == KindPurchase {
		return "PUR"
	}
	return "INV"
}

// ParseDocumentKind parses a kind, case-insensitively
func ParseDocumentKind(s string) (DocumentKind, error) {
	k := DocumentKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "document kind must be INVOICE or PURCHASE")
	}
	return k, nil
}

// DocumentStatus is derived from the paid and balance amounts
type DocumentStatus string

const (
	StatusOpen      DocumentStatus = "OPEN"
	StatusPartial   DocumentStatus = "PARTIAL"
	StatusPaid      DocumentStatus = "PAID"
	StatusOverpaid  DocumentStatus = "OVERPAID"
	StatusCancelled DocumentStatus = "CANCELLED"
)

// IsValid checks if the status is known
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusPartial, StatusPaid, StatusOverpaid, StatusCancelled:
		return true
	}
	return false
}

// PartyRef identifies the counterparty of a document
type PartyRef struct {
	ID   uuid.UUID
	Name string
}

// Pricing controls how lines are taxed and totalled
type Pricing struct {
	IsIntraState   bool
	RoundOffPlaces int32
}

// Document is an invoice or a purchase bill. It is the aggregate root for
// its lines and owns the cached paid/balance amounts derived from the payment ledger.
type Document struct {
	shared.TenantAggregateRoot
	Number        string
	Kind          DocumentKind
	PartyID       uuid.UUID
	PartyName     string
	IsIntraState  bool
	DocumentDate  time.Time
	DueDate       *time.Time
	Lines         []LineItem
	Subtotal      decimal.Decimal
	CGST          decimal.Decimal
	SGST          decimal.Decimal
	UTGST         decimal.Decimal
	Cess          decimal.Decimal
	RoundOff      decimal.Decimal
	GrandTotal    decimal.Decimal
	PaidAmount    decimal.Decimal
	BalanceAmount decimal.Decimal
	Status        DocumentStatus
	Notes         string
	LastLedgerAt  *time.Time
	ReconciledAt  *time.Time
	CancelledAt   *time.Time
	CancelReason  string

	linesChanged bool
}

// NewDocument creates a document with computed tax totals, nothing paid
func NewDocument(
	tenantID uuid.UUID,
	kind DocumentKind,
	number string,
	party PartyRef,
	documentDate time.Time,
	specs []LineSpec,
	pricing Pricing,
) (*Document, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "document kind must be INVOICE or PURCHASE")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "document number cannot be empty")
	}
	if party.ID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "party is required")
	}
	if documentDate.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "document date is required")
	}

	d := &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Kind:                kind,
		PartyID:             party.ID,
		PartyName:           party.Name,
		IsIntraState:        pricing.IsIntraState,
		DocumentDate:        truncateToDay(documentDate),
		PaidAmount:          decimal.Zero,
		Status:              StatusOpen,
	}
	if err := d.applyLines(specs, pricing.RoundOffPlaces); err != nil {
		return nil, err
	}
	d.BalanceAmount = d.GrandTotal
	d.Status = deriveStatus(d.PaidAmount, d.BalanceAmount)
	reconciled := d.CreatedAt
	d.ReconciledAt = &reconciled

	d.AddDomainEvent(NewDocumentCreatedEvent(d))
	return d, nil
}

// SetDueDate sets the payment due date. It cannot precede the document date.
func (d *Document) SetDueDate(due *time.Time) error {
	if due != nil {
		t := truncateToDay(*due)
		if t.Before(d.DocumentDate) {
			return shared.NewDomainError(shared.CodeInvalidInput, "due date cannot be before the document date")
		}
		due = &t
	}
	d.DueDate = due
	return nil
}

// ReplaceLines recomputes the document from new lines. If payments already
// exceed the new grand total the change is rejected with BALANCE_CONFLICT.
func (d *Document) ReplaceLines(specs []LineSpec, roundOffPlaces int32) error {
	if d.IsCancelled() {
		return shared.NewDomainError(shared.CodeInvalidState, "cannot edit a cancelled document")
	}

	snapshot := *d
	oldTotal := d.GrandTotal
	if err := d.applyLines(specs, roundOffPlaces); err != nil {
		*d = snapshot
		return err
	}
	if d.GrandTotal.LessThan(d.PaidAmount) {
		*d = snapshot
		return shared.NewDomainError(shared.CodeBalanceConflict,
			"new grand total "+d.GrandTotal.StringFixed(2)+" is less than paid amount "+d.PaidAmount.StringFixed(2))
	}
	d.BalanceAmount = d.GrandTotal.Sub(d.PaidAmount)
	d.Status = deriveStatus(d.PaidAmount, d.BalanceAmount)
	d.UpdatedAt = time.Now().UTC()
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentLinesUpdatedEvent(d, oldTotal))
	return nil
}

func (d *Document) applyLines(specs []LineSpec, roundOffPlaces int32) error {
	if len(specs) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "document must have at least one line")
	}
	lines := make([]LineItem, 0, len(specs))
	computed := make([]tax.LineTax, 0, len(specs))
	for i, spec := range specs {
		item, lt, err := newLineItem(d.ID, i+1, spec, d.IsIntraState)
		if err != nil {
			return err
		}
		lines = append(lines, item)
		computed = append(computed, lt)
	}

	totals := tax.Summarize(computed, roundOffPlaces)
	d.Lines = lines
	d.Subtotal = totals.Subtotal
	d.CGST = totals.CGST
	d.SGST = totals.SGST
	d.UTGST = totals.UTGST
	d.Cess = totals.Cess
	d.RoundOff = totals.RoundOff
	d.GrandTotal = totals.GrandTotal
	d.linesChanged = true
	return nil
}

// LinesChanged reports whether Lines must be rewritten on save
func (d *Document) LinesChanged() bool {
	return d.linesChanged
}

// MarkLinesPersisted clears the dirty flag after the repository wrote the lines
func (d *Document) MarkLinesPersisted() {
	d.linesChanged = false
}

// ValidatePayment checks whether a new payment of amount may be recorded.
// Without allowOverpayment the payment may not exceed the outstanding balance.
func (d *Document) ValidatePayment(amount decimal.Decimal, allowOverpayment bool) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidPaymentAmount
	}
	if d.IsCancelled() {
		return shared.NewDomainError(shared.CodeInvalidState, "cannot record a payment on a cancelled document")
	}
	if allowOverpayment {
		return nil
	}
	if !d.BalanceAmount.IsPositive() {
		return shared.NewDomainError(shared.CodeOverpaymentRejected, "document has no outstanding balance")
	}
	if amount.GreaterThan(d.BalanceAmount) {
		return shared.NewDomainError(shared.CodeOverpaymentRejected,
			"payment "+amount.StringFixed(2)+" exceeds outstanding balance "+d.BalanceAmount.StringFixed(2))
	}
	return nil
}

// MarkLedgerActivity records that the payment ledger for this document changed
func (d *Document) MarkLedgerActivity(at time.Time) {
	d.LastLedgerAt = &at
}

// NeedsReconcile reports whether ledger activity happened after the last reconcile
func (d *Document) NeedsReconcile() bool {
	if d.ReconciledAt == nil {
		return true
	}
	return d.LastLedgerAt != nil && d.LastLedgerAt.After(*d.ReconciledAt)
}

// Reconcile sets paid and balance from the ledger sum. It returns false and
// leaves the document untouched when nothing changed.
func (d *Document) Reconcile(paid decimal.Decimal, at time.Time) bool {
	balance := d.GrandTotal.Sub(paid)
	status := d.Status
	if !d.IsCancelled() {
		status = deriveStatus(paid, balance)
	}

	unchanged := d.PaidAmount.Equal(paid) && d.BalanceAmount.Equal(balance) && d.Status == status
	if unchanged && !d.NeedsReconcile() {
		return false
	}

	oldPaid := d.PaidAmount
	d.PaidAmount = paid
	d.BalanceAmount = balance
	d.Status = status
	d.ReconciledAt = &at
	d.UpdatedAt = at
	d.IncrementVersion()

	if !unchanged {
		d.AddDomainEvent(NewDocumentReconciledEvent(d, oldPaid))
	}
	return true
}

// Cancel voids a document. Only allowed while nothing is paid.
func (d *Document) Cancel(reason string) error {
	if d.IsCancelled() {
		return shared.NewDomainError(shared.CodeInvalidState, "document is already cancelled")
	}
	if !d.PaidAmount.IsZero() {
		return shared.NewDomainError(shared.CodeDocumentHasPayments, "reverse all payments before cancelling the document")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "cancel reason is required")
	}

	now := time.Now().UTC()
	d.Status = StatusCancelled
	d.CancelledAt = &now
	d.CancelReason = reason
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentCancelledEvent(d))
	return nil
}

// IsCancelled returns true if the document was voided
func (d *Document) IsCancelled() bool {
	return d.Status == StatusCancelled
}

// IsOverdue reports whether the document has an outstanding balance past its due date
func (d *Document) IsOverdue(now time.Time) bool {
	if d.DueDate == nil || d.IsCancelled() {
		return false
	}
	return d.BalanceAmount.IsPositive() && truncateToDay(now).After(*d.DueDate)
}

// Tax returns the document level tax totals
func (d *Document) Tax() tax.DocumentTax {
	return tax.DocumentTax{
		Subtotal:   d.Subtotal,
		CGST:       d.CGST,
		SGST:       d.SGST,
		UTGST:      d.UTGST,
		Cess:       d.Cess,
		RoundOff:   d.RoundOff,
		GrandTotal: d.GrandTotal,
	}
}

func deriveStatus(paid, balance decimal.Decimal) DocumentStatus {
	switch {
	case balance.IsNegative():
		return StatusOverpaid
	case balance.IsZero():
		return StatusPaid
	case paid.IsZero():
		return StatusOpen
	default:
		return StatusPartial
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
