package domain

import (
	"math/big"
	"time"
)

// CartLine is a product and the quantity requested.
type CartLine struct {
	Product  *Product
	Quantity int64
}

// PricedLine is a cart line with the unit price snapshotted.
type PricedLine struct {
	ProductID   string
	ProductName string
	Quantity    int64
	UnitPrice   *Money
	LineTotal   *Money
}

// Totals is the pricing of a whole cart.
type Totals struct {
	Lines           []PricedLine
	Subtotal        *Money
	DiscountAmount  *Money
	TaxAmount       *Money
	FinalAmount     *Money
	DiscountApplied bool
}

// PricingCalculator computes sale totals. It is pure: no I/O, no clock.
type PricingCalculator struct {
	taxRate *big.Rat
}

// NewPricingCalculator creates a calculator with a tax rate fraction such
// as 0.16. A nil rate means no tax.
func NewPricingCalculator(taxRate *big.Rat) *PricingCalculator {
	if taxRate == nil {
		taxRate = new(big.Rat)
	}
	return &PricingCalculator{taxRate: new(big.Rat).Set(taxRate)}
}

// ComputeTotals prices lines at current product prices. The discount, if
// any, is applied once against the subtotal when it is valid at now and the
// subtotal meets its minimum. Tax is charged on the discounted subtotal.
func (pc *PricingCalculator) ComputeTotals(lines []CartLine, discount *Discount, now time.Time) (*Totals, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := &Totals{
		Lines:          make([]PricedLine, 0, len(lines)),
		Subtotal:       Zero(),
		DiscountAmount: Zero(),
		TaxAmount:      Zero(),
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		unit := line.Product.Price()
		lineTotal := unit.MultiplyByInt(line.Quantity)
		totals.Lines = append(totals.Lines, PricedLine{
			ProductID:   line.Product.ID(),
			ProductName: line.Product.Name(),
			Quantity:    line.Quantity,
			UnitPrice:   unit,
			LineTotal:   lineTotal,
		})
		totals.Subtotal = totals.Subtotal.Add(lineTotal)
	}

	if discount != nil && discount.Qualifies(totals.Subtotal, now) {
		totals.DiscountAmount = discount.AmountFor(totals.Subtotal)
		totals.DiscountApplied = true
	}

	taxable := totals.Subtotal.Subtract(totals.DiscountAmount)
	if pc.taxRate.Sign() > 0 {
		totals.TaxAmount = taxable.MultiplyByRat(pc.taxRate).RoundToCents()
	}

	totals.FinalAmount = taxable.Add(totals.TaxAmount).ClampZero()
	return totals, nil
}
