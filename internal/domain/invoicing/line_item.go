package invoicing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// LineSpec is the caller supplied description of a line
type LineSpec struct {
	Description string
	HSNCode     string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	GSTRate     decimal.Decimal
	Cess        tax.Cess
}

// LineItem is a priced and taxed document line
type LineItem struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	Position     int
	Description  string
	HSNCode      string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Discount     decimal.Decimal
	GSTRate      decimal.Decimal
	CessKind     tax.CessKind
	CessValue    decimal.Decimal
	TaxableValue decimal.Decimal
	CGST         decimal.Decimal
	SGST         decimal.Decimal
	UTGST        decimal.Decimal
	CessAmount   decimal.Decimal
	LineTotal    decimal.Decimal
}

func newLineItem(documentID uuid.UUID, position int, spec LineSpec, intraState bool) (LineItem, tax.LineTax, error) {
	description := strings.TrimSpace(spec.Description)
	if description == "" {
		return LineItem{}, tax.LineTax{}, shared.NewDomainError(shared.CodeInvalidInput, "line description cannot be empty")
	}

	lt, err := tax.ComputeLine(tax.LineInput{
		Quantity:  spec.Quantity,
		UnitPrice: spec.UnitPrice,
		Discount:  spec.Discount,
		GSTRate:   spec.GSTRate,
		Cess:      spec.Cess,
	}, intraState)
	if err != nil {
		return LineItem{}, tax.LineTax{}, err
	}

	return LineItem{
		ID:           uuid.New(),
		DocumentID:   documentID,
		Position:     position,
		Description:  description,
		HSNCode:      strings.TrimSpace(spec.HSNCode),
		Quantity:     spec.Quantity,
		UnitPrice:    spec.UnitPrice,
		Discount:     spec.Discount,
		GSTRate:      spec.GSTRate,
		CessKind:     spec.Cess.Kind,
		CessValue:    spec.Cess.Value,
		TaxableValue: lt.TaxableValue,
		CGST:         lt.Breakdown.CGST,
		SGST:         lt.Breakdown.SGST,
		UTGST:        lt.Breakdown.UTGST,
		CessAmount:   lt.Breakdown.Cess,
		LineTotal:    lt.Total(),
	}, lt, nil
}
