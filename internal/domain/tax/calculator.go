package tax

import (
	"github.com/shopspring/decimal"
)

// Compute splits gstRate over taxableValue. It fails with INVALID_TAX_INPUT for a
// negative taxable value or a rate outside [0, 100].
func Compute(taxableValue, gstRate decimal.Decimal, isIntraState bool) (Breakdown, error) {
	return ComputeWithCess(taxableValue, gstRate, isIntraState, NoCess())
}

// ComputeWithCess is Compute with an additional cess component
func ComputeWithCess(taxableValue, gstRate decimal.Decimal, isIntraState bool, cess Cess) (Breakdown, error) {
	if taxableValue.IsNegative() {
		return Breakdown{}, invalidInput("taxable value cannot be negative")
	}
	if gstRate.IsNegative() || gstRate.GreaterThan(hundred) {
		return Breakdown{}, invalidInput("gst rate must be between 0 and 100")
	}
	if err := cess.Validate(); err != nil {
		return Breakdown{}, err
	}

	b := zeroBreakdown()
	if isIntraState {
		half := taxableValue.Mul(gstRate.Div(two)).Div(hundred)
		b.CGST = half
		b.SGST = half
	} else {
		b.UTGST = taxableValue.Mul(gstRate).Div(hundred)
	}
	b.Cess = cess.Amount(taxableValue)
	return b, nil
}

// LineInput describes one priced line before tax
type LineInput struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	GSTRate   decimal.Decimal
	Cess      Cess
}

// LineTax is a computed line
type LineTax struct {
	TaxableValue decimal.Decimal `json:"taxable_value"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	Breakdown    Breakdown       `json:"breakdown"`
}

// Total returns taxable value plus all tax components
func (l LineTax) Total() decimal.Decimal {
	return l.TaxableValue.Add(l.Breakdown.Total())
}

// ComputeLine validates a line and computes its tax
func ComputeLine(in LineInput, isIntraState bool) (LineTax, error) {
	if !in.Quantity.IsPositive() {
		return LineTax{}, invalidInput("quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return LineTax{}, invalidInput("unit price cannot be negative")
	}
	gross := in.Quantity.Mul(in.UnitPrice)
	if in.Discount.IsNegative() || in.Discount.GreaterThan(gross) {
		return LineTax{}, invalidInput("discount must be between 0 and the line amount")
	}
	taxable := gross.Sub(in.Discount)

	b, err := ComputeWithCess(taxable, in.GSTRate, isIntraState, in.Cess)
	if err != nil {
		return LineTax{}, err
	}
	return LineTax{TaxableValue: taxable, GSTRate: in.GSTRate, Breakdown: b}, nil
}
