package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Requests
// =============================================================================

// LineRequest describes one document line
type LineRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	HSNCode     string          `json:"hsn_code" binding:"max=20"`
	Quantity    decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
	Discount    decimal.Decimal `json:"discount" binding:"decimal_gte0"`
	GSTRate     decimal.Decimal `json:"gst_rate" binding:"decimal_gte0"`
	CessKind    string          `json:"cess_kind" binding:"omitempty,oneof=PERCENT FLAT percent flat"`
	CessValue   decimal.Decimal `json:"cess_value" binding:"decimal_gte0"`
}

// CreateDocumentRequest is the input of Create
type CreateDocumentRequest struct {
	Kind         string     `json:"kind" binding:"required,oneof=INVOICE PURCHASE invoice purchase"`
	PartyID      uuid.UUID  `json:"party_id" binding:"required"`
	DocumentDate *time.Time `json:"document_date"`
	DueDate      *time.Time `json:"due_date"`
	// IsIntraState overrides the state derived from the party's address or GSTIN
	IsIntraState *bool         `json:"is_intra_state"`
	Lines        []LineRequest `json:"lines" binding:"required,min=1,max=500,dive"`
	Notes        string        `json:"notes" binding:"max=2000"`
}

// UpdateLinesRequest replaces all lines of a document
type UpdateLinesRequest struct {
	Lines []LineRequest `json:"lines" binding:"required,min=1,max=500,dive"`
}

// CancelDocumentRequest is the input of Cancel
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// DocumentListFilter represents filter options for document list
type DocumentListFilter struct {
	Search   string     `form:"search"`
	Kind     string     `form:"kind" binding:"omitempty,oneof=INVOICE PURCHASE invoice purchase"`
	Status   string     `form:"status" binding:"omitempty,oneof=OPEN PARTIAL PAID OVERPAID CANCELLED"`
	PartyID  string     `form:"party_id" binding:"omitempty,uuid"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TaxPreviewRequest prices lines without storing anything
type TaxPreviewRequest struct {
	IsIntraState bool          `json:"is_intra_state"`
	Lines        []LineRequest `json:"lines" binding:"required,min=1,max=500,dive"`
}

// toLineSpecs converts request lines to domain line specs
func toLineSpecs(lines []LineRequest) ([]invoicing.LineSpec, error) {
	specs := make([]invoicing.LineSpec, 0, len(lines))
	for _, l := range lines {
		kind, err := tax.ParseCessKind(l.CessKind)
		if err != nil {
			return nil, err
		}
		specs = append(specs, invoicing.LineSpec{
			Description: l.Description,
			HSNCode:     l.HSNCode,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			GSTRate:     l.GSTRate,
			Cess:        tax.Cess{Kind: kind, Value: l.CessValue},
		})
	}
	return specs, nil
}

// =============================================================================
// Responses
// =============================================================================

// LineResponse is a priced document line
type LineResponse struct {
	ID           uuid.UUID       `json:"id"`
	Position     int             `json:"position"`
	Description  string          `json:"description"`
	HSNCode      string          `json:"hsn_code,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Discount     decimal.Decimal `json:"discount"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	CessKind     string          `json:"cess_kind,omitempty"`
	CessValue    decimal.Decimal `json:"cess_value"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGST         decimal.Decimal `json:"cgst"`
	SGST         decimal.Decimal `json:"sgst"`
	UTGST        decimal.Decimal `json:"utgst"`
	CessAmount   decimal.Decimal `json:"cess_amount"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// DocumentResponse is a document with its lines
type DocumentResponse struct {
	DocumentListResponse
	Lines        []LineResponse `json:"lines"`
	Notes        string         `json:"notes,omitempty"`
	CancelledAt  *time.Time     `json:"cancelled_at,omitempty"`
	CancelReason string         `json:"cancel_reason,omitempty"`
}

// DocumentListResponse is a document without its lines
type DocumentListResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	Kind          string          `json:"kind"`
	PartyID       uuid.UUID       `json:"party_id"`
	PartyName     string          `json:"party_name"`
	IsIntraState  bool            `json:"is_intra_state"`
	DocumentDate  time.Time       `json:"document_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	UTGST         decimal.Decimal `json:"utgst"`
	Cess          decimal.Decimal `json:"cess"`
	RoundOff      decimal.Decimal `json:"round_off"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Status        string          `json:"status"`
	Overdue       bool            `json:"overdue"`
	ReconciledAt  *time.Time      `json:"reconciled_at,omitempty"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToDocumentListResponse converts a document without its lines
func ToDocumentListResponse(d *invoicing.Document) DocumentListResponse {
	return DocumentListResponse{
		ID:            d.ID,
		Number:        d.Number,
		Kind:          string(d.Kind),
		PartyID:       d.PartyID,
		PartyName:     d.PartyName,
		IsIntraState:  d.IsIntraState,
		DocumentDate:  d.DocumentDate,
		DueDate:       d.DueDate,
		Subtotal:      d.Subtotal,
		CGST:          d.CGST,
		SGST:          d.SGST,
		UTGST:         d.UTGST,
		Cess:          d.Cess,
		RoundOff:      d.RoundOff,
		GrandTotal:    d.GrandTotal,
		PaidAmount:    d.PaidAmount,
		BalanceAmount: d.BalanceAmount,
		Status:        string(d.Status),
		Overdue:       d.IsOverdue(time.Now().UTC()),
		ReconciledAt:  d.ReconciledAt,
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ToDocumentResponse converts a document and its lines
func ToDocumentResponse(d *invoicing.Document) DocumentResponse {
	lines := make([]LineResponse, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = LineResponse{
			ID:           l.ID,
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
	return DocumentResponse{
		DocumentListResponse: ToDocumentListResponse(d),
		Lines:                lines,
		Notes:                d.Notes,
		CancelledAt:          d.CancelledAt,
		CancelReason:         d.CancelReason,
	}
}

// LinePreview is one priced line of a tax preview
type LinePreview struct {
	Description string `json:"description"`
	tax.LineTax
	LineTotal decimal.Decimal `json:"line_total"`
}

// TaxPreviewResponse is the breakdown of a tax preview
type TaxPreviewResponse struct {
	IsIntraState bool            `json:"is_intra_state"`
	Lines        []LinePreview   `json:"lines"`
	Totals       tax.DocumentTax `json:"totals"`
}
