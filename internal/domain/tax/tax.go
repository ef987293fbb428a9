// Package tax computes GST breakdowns for invoice and purchase lines.
//
// A supply within the business's home state is split equally into CGST and SGST.
// Any other supply carries the whole rate as a single UTGST component. Cess is an
// additional component computed independently of that split. Rounding to the
// nearest rupee happens once per document, never per line.
package tax

import (
	"fmt"
	"strings"

	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// CessKind selects how a cess value is applied to a line
type CessKind string

const (
	CessNone    CessKind = ""
	CessPercent CessKind = "PERCENT"
	CessFlat    CessKind = "FLAT"
)

// IsValid reports whether the cess kind is known
func (k CessKind) IsValid() bool {
	switch k {
	case CessNone, CessPercent, CessFlat:
		return true
	}
	return false
}

// ParseCessKind parses a cess kind, case-insensitively
func ParseCessKind(s string) (CessKind, error) {
	k := CessKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return CessNone, invalidInput(fmt.Sprintf("unknown cess kind %q", s))
	}
	return k, nil
}

// Cess is an additional levy on a line. PERCENT applies Value% to the taxable
// value, FLAT adds Value as an absolute amount.
type Cess struct {
	Kind  CessKind        `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// NoCess returns a zero cess
func NoCess() Cess {
	return Cess{Kind: CessNone, Value: decimal.Zero}
}

// Validate checks the cess kind and value
func (c Cess) Validate() error {
	if !c.Kind.IsValid() {
		return invalidInput(fmt.Sprintf("unknown cess kind %q", c.Kind))
	}
	if c.Value.IsNegative() {
		return invalidInput("cess value cannot be negative")
	}
	if c.Kind == CessPercent && c.Value.GreaterThan(hundred) {
		return invalidInput("cess percentage cannot exceed 100")
	}
	if c.Kind == CessNone && !c.Value.IsZero() {
		return invalidInput("cess value requires a cess kind")
	}
	return nil
}

// Amount returns the cess amount for a taxable value
func (c Cess) Amount(taxableValue decimal.Decimal) decimal.Decimal {
	switch c.Kind {
	case CessPercent:
		return taxableValue.Mul(c.Value).Div(hundred)
	case CessFlat:
		return c.Value
	default:
		return decimal.Zero
	}
}

// Breakdown holds the tax components of a single taxable value.
// For intra-state supply UTGST is zero; otherwise CGST and SGST are zero.
type Breakdown struct {
	CGST  decimal.Decimal `json:"cgst"`
	SGST  decimal.Decimal `json:"sgst"`
	UTGST decimal.Decimal `json:"utgst"`
	Cess  decimal.Decimal `json:"cess"`
}

// Total returns the sum of all components
func (b Breakdown) Total() decimal.Decimal {
	return b.CGST.Add(b.SGST).Add(b.UTGST).Add(b.Cess)
}

// Add returns the component-wise sum of two breakdowns
func (b Breakdown) Add(o Breakdown) Breakdown {
	return Breakdown{
		CGST:  b.CGST.Add(o.CGST),
		SGST:  b.SGST.Add(o.SGST),
		UTGST: b.UTGST.Add(o.UTGST),
		Cess:  b.Cess.Add(o.Cess),
	}
}

func zeroBreakdown() Breakdown {
	return Breakdown{CGST: decimal.Zero, SGST: decimal.Zero, UTGST: decimal.Zero, Cess: decimal.Zero}
}

func invalidInput(msg string) error {
	return shared.NewDomainError(shared.CodeInvalidTaxInput, msg)
}
