package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for invoices and purchase bills
type DocumentModel struct {
	TenantAggregateModel
	Number        string          `gorm:"type:varchar(30);not null;index"`
	Kind          string          `gorm:"type:varchar(20);not null;index"`
	PartyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartyName     string          `gorm:"type:varchar(200);not null"`
	IsIntraState  bool            `gorm:"not null"`
	DocumentDate  time.Time       `gorm:"type:date;not null;index"`
	DueDate       *time.Time      `gorm:"type:date"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CGST          decimal.Decimal `gorm:"column:cgst;type:decimal(18,4);not null"`
	SGST          decimal.Decimal `gorm:"column:sgst;type:decimal(18,4);not null"`
	UTGST         decimal.Decimal `gorm:"column:utgst;type:decimal(18,4);not null"`
	Cess          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RoundOff      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status        string          `gorm:"type:varchar(20);not null;index"`
	Notes         string          `gorm:"type:text"`
	LastLedgerAt  *time.Time      `gorm:"index"`
	ReconciledAt  *time.Time
	CancelledAt   *time.Time
	CancelReason  string          `gorm:"type:varchar(500)"`
	Lines         []LineItemModel `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// LineItemModel is the persistence model for a document line
type LineItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null"`
	Description  string          `gorm:"type:varchar(500);not null"`
	HSNCode      string          `gorm:"column:hsn_code;type:varchar(8)"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GSTRate      decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null"`
	CessKind     string          `gorm:"type:varchar(10)"`
	CessValue    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxableValue decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CGST         decimal.Decimal `gorm:"column:cgst;type:decimal(18,4);not null"`
	SGST         decimal.Decimal `gorm:"column:sgst;type:decimal(18,4);not null"`
	UTGST        decimal.Decimal `gorm:"column:utgst;type:decimal(18,4);not null"`
	CessAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "document_lines"
}

// ToDomain converts the model to a domain Document. Lines are included when loaded.
func (m *DocumentModel) ToDomain() *invoicing.Document {
	d := &invoicing.Document{
		Number:        m.Number,
		Kind:          invoicing.DocumentKind(m.Kind),
		PartyID:       m.PartyID,
		PartyName:     m.PartyName,
		IsIntraState:  m.IsIntraState,
		DocumentDate:  m.DocumentDate.UTC(),
		DueDate:       utcPtr(m.DueDate),
		Subtotal:      m.Subtotal,
		CGST:          m.CGST,
		SGST:          m.SGST,
		UTGST:         m.UTGST,
		Cess:          m.Cess,
		RoundOff:      m.RoundOff,
		GrandTotal:    m.GrandTotal,
		PaidAmount:    m.PaidAmount,
		BalanceAmount: m.BalanceAmount,
		Status:        invoicing.DocumentStatus(m.Status),
		Notes:         m.Notes,
		LastLedgerAt:  m.LastLedgerAt,
		ReconciledAt:  m.ReconciledAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
	}
	m.PopulateTenantAggregateRoot(&d.TenantAggregateRoot)
	if len(m.Lines) > 0 {
		d.Lines = make([]invoicing.LineItem, len(m.Lines))
		for i := range m.Lines {
			d.Lines[i] = m.Lines[i].ToDomain()
		}
	}
	return d
}

// FromDomain populates the model, without lines, from a domain Document
func (m *DocumentModel) FromDomain(d *invoicing.Document) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Number = d.Number
	m.Kind = string(d.Kind)
	m.PartyID = d.PartyID
	m.PartyName = d.PartyName
	m.IsIntraState = d.IsIntraState
	m.DocumentDate = d.DocumentDate
	m.DueDate = d.DueDate
	m.Subtotal = d.Subtotal
	m.CGST = d.CGST
	m.SGST = d.SGST
	m.UTGST = d.UTGST
	m.Cess = d.Cess
	m.RoundOff = d.RoundOff
	m.GrandTotal = d.GrandTotal
	m.PaidAmount = d.PaidAmount
	m.BalanceAmount = d.BalanceAmount
	m.Status = string(d.Status)
	m.Notes = d.Notes
	m.LastLedgerAt = d.LastLedgerAt
	m.ReconciledAt = d.ReconciledAt
	m.CancelledAt = d.CancelledAt
	m.CancelReason = d.CancelReason
}

// DocumentModelFromDomain creates a persistence model from a domain Document
func DocumentModelFromDomain(d *invoicing.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// LineItemModelsFromDomain converts the lines of a document
func LineItemModelsFromDomain(d *invoicing.Document) []LineItemModel {
	lines := make([]LineItemModel, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = LineItemModel{
			ID:           l.ID,
			DocumentID:   d.ID,
			Position:     l.Position,
			Description:  l.Description,
			HSNCode:      l.HSNCode,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Discount:     l.Discount,
			GSTRate:      l.GSTRate,
			CessKind:     string(l.CessKind),
			CessValue:    l.CessValue,
			TaxableValue: l.TaxableValue,
			CGST:         l.CGST,
			SGST:         l.SGST,
			UTGST:        l.UTGST,
			CessAmount:   l.CessAmount,
			LineTotal:    l.LineTotal,
		}
	}
	return lines
}

// ToDomain converts a line model to a domain LineItem
func (m *LineItemModel) ToDomain() invoicing.LineItem {
	return invoicing.LineItem{
		ID:           m.ID,
		DocumentID:   m.DocumentID,
		Position:     m.Position,
		Description:  m.Description,
		HSNCode:      m.HSNCode,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		Discount:     m.Discount,
		GSTRate:      m.GSTRate,
		CessKind:     tax.CessKind(m.CessKind),
		CessValue:    m.CessValue,
		TaxableValue: m.TaxableValue,
		CGST:         m.CGST,
		SGST:         m.SGST,
		UTGST:        m.UTGST,
		CessAmount:   m.CessAmount,
		LineTotal:    m.LineTotal,
	}
}

// DocumentSequenceModel holds the last issued number per tenant, kind and year
type DocumentSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string    `gorm:"type:varchar(20);primaryKey"`
	Year      int       `gorm:"primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
