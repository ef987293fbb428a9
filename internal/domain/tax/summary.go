package tax

import (
	"github.com/shopspring/decimal"
)

// ComponentPlaces is the precision of stored document level components (paise)
const ComponentPlaces int32 = 2

// DocumentTax holds the document level totals.
// GrandTotal always equals Subtotal + CGST + SGST + UTGST + Cess + RoundOff.
type DocumentTax struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	CGST       decimal.Decimal `json:"cgst"`
	SGST       decimal.Decimal `json:"sgst"`
	UTGST      decimal.Decimal `json:"utgst"`
	Cess       decimal.Decimal `json:"cess"`
	RoundOff   decimal.Decimal `json:"round_off"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Summarize totals computed lines. Components are summed exactly and rounded to
// paise, then round_off = round(total, roundOffPlaces) - total is applied once.
// roundOffPlaces 0 rounds to the nearest rupee; ComponentPlaces disables round-off.
func Summarize(lines []LineTax, roundOffPlaces int32) DocumentTax {
	subtotal := decimal.Zero
	sum := zeroBreakdown()
	for _, l := range lines {
		subtotal = subtotal.Add(l.TaxableValue)
		sum = sum.Add(l.Breakdown)
	}

	dt := DocumentTax{
		Subtotal: subtotal.Round(ComponentPlaces),
		CGST:     sum.CGST.Round(ComponentPlaces),
		SGST:     sum.SGST.Round(ComponentPlaces),
		UTGST:    sum.UTGST.Round(ComponentPlaces),
		Cess:     sum.Cess.Round(ComponentPlaces),
	}

	beforeRounding := dt.Subtotal.Add(dt.CGST).Add(dt.SGST).Add(dt.UTGST).Add(dt.Cess)
	if roundOffPlaces > ComponentPlaces {
		roundOffPlaces = ComponentPlaces
	}
	dt.RoundOff = beforeRounding.Round(roundOffPlaces).Sub(beforeRounding)
	dt.GrandTotal = beforeRounding.Add(dt.RoundOff)
	return dt
}

// Verify checks the grand total identity
func (d DocumentTax) Verify() bool {
	sum := d.Subtotal.Add(d.CGST).Add(d.SGST).Add(d.UTGST).Add(d.Cess).Add(d.RoundOff)
	return sum.Equal(d.GrandTotal)
}
