package domain

import (
	"fmt"
	"strings"
	"time"
)

// Sale field names for change tracking.
const (
	FieldSaleStatus = "status"
)

// SaleItem is an immutable line of a sale. Name and unit price are
// snapshots taken at sale time.
type SaleItem struct {
	id          string
	saleID      string
	productID   string
	productName string
	quantity    int64
	unitPrice   *Money
	lineTotal   *Money
}

func NewSaleItem(id, saleID, productID, productName string, quantity int64, unitPrice *Money) (*SaleItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &SaleItem{
		id:          id,
		saleID:      saleID,
		productID:   productID,
		productName: productName,
		quantity:    quantity,
		unitPrice:   unitPrice.Copy(),
		lineTotal:   unitPrice.MultiplyByInt(quantity),
	}, nil
}

func (i *SaleItem) ID() string          { return i.id }
func (i *SaleItem) SaleID() string      { return i.saleID }
func (i *SaleItem) ProductID() string   { return i.productID }
func (i *SaleItem) ProductName() string { return i.productName }
func (i *SaleItem) Quantity() int64     { return i.quantity }
func (i *SaleItem) UnitPrice() *Money   { return i.unitPrice.Copy() }
func (i *SaleItem) LineTotal() *Money   { return i.lineTotal.Copy() }

// SaleParams carries everything a sale is created from. Amounts come from
// the pricing calculator and tender settlement.
type SaleParams struct {
	ID             string
	Number         string
	CustomerID     string
	CashierID      string
	DiscountID     string
	Items          []*SaleItem
	Subtotal       *Money
	DiscountAmount *Money
	TaxAmount      *Money
	FinalAmount    *Money
	PaymentMethod  PaymentMethod
	AmountTendered *Money
	ChangeDue      *Money
}

// Sale is a till transaction. Its status is derived from the payment method
// at creation: synchronous tenders complete immediately, mobile money waits
// for the provider callback.
type Sale struct {
	events

	id             string
	number         string
	customerID     string
	cashierID      string
	discountID     string
	items          []*SaleItem
	subtotal       *Money
	discountAmount *Money
	taxAmount      *Money
	finalAmount    *Money
	paymentMethod  PaymentMethod
	amountTendered *Money
	changeDue      *Money
	status         SaleStatus
	createdAt      time.Time
	updatedAt      time.Time

	changes *ChangeTracker
}

func NewSale(p SaleParams, now time.Time) (*Sale, error) {
	if len(p.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(p.CashierID) == "" {
		return nil, ErrMissingCashier
	}
	if p.FinalAmount.IsNegative() {
		return nil, fmt.Errorf("final amount %s is negative", p.FinalAmount)
	}

	status := SaleStatusCompleted
	if p.PaymentMethod.IsAsynchronous() {
		status = SaleStatusPending
	}

	s := &Sale{
		id:             p.ID,
		number:         p.Number,
		customerID:     p.CustomerID,
		cashierID:      p.CashierID,
		discountID:     p.DiscountID,
		items:          p.Items,
		subtotal:       p.Subtotal.Copy(),
		discountAmount: p.DiscountAmount.Copy(),
		taxAmount:      p.TaxAmount.Copy(),
		finalAmount:    p.FinalAmount.Copy(),
		paymentMethod:  p.PaymentMethod,
		amountTendered: p.AmountTendered.Copy(),
		changeDue:      p.ChangeDue.Copy(),
		status:         status,
		createdAt:      now,
		updatedAt:      now,
		changes:        NewChangeTracker(),
	}

	if status == SaleStatusCompleted {
		s.recordCompleted(now)
	} else {
		s.record(&SalePendingEvent{
			SaleID:      s.id,
			SaleNumber:  s.number,
			FinalAmount: s.finalAmount.Copy(),
			CreatedAt:   now,
		})
	}
	return s, nil
}

// ReconstructSale rebuilds a sale loaded from storage.
func ReconstructSale(p SaleParams, status SaleStatus, createdAt, updatedAt time.Time) *Sale {
	return &Sale{
		id:             p.ID,
		number:         p.Number,
		customerID:     p.CustomerID,
		cashierID:      p.CashierID,
		discountID:     p.DiscountID,
		items:          p.Items,
		subtotal:       p.Subtotal,
		discountAmount: p.DiscountAmount,
		taxAmount:      p.TaxAmount,
		finalAmount:    p.FinalAmount,
		paymentMethod:  p.PaymentMethod,
		amountTendered: p.AmountTendered,
		changeDue:      p.ChangeDue,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		changes:        NewChangeTracker(),
	}
}

func (s *Sale) ID() string                   { return s.id }
func (s *Sale) Number() string               { return s.number }
func (s *Sale) CustomerID() string           { return s.customerID }
func (s *Sale) CashierID() string            { return s.cashierID }
func (s *Sale) DiscountID() string           { return s.discountID }
func (s *Sale) Items() []*SaleItem           { return s.items }
func (s *Sale) Subtotal() *Money             { return s.subtotal.Copy() }
func (s *Sale) DiscountAmount() *Money       { return s.discountAmount.Copy() }
func (s *Sale) TaxAmount() *Money            { return s.taxAmount.Copy() }
func (s *Sale) FinalAmount() *Money          { return s.finalAmount.Copy() }
func (s *Sale) PaymentMethod() PaymentMethod { return s.paymentMethod }
func (s *Sale) AmountTendered() *Money       { return s.amountTendered.Copy() }
func (s *Sale) ChangeDue() *Money            { return s.changeDue.Copy() }
func (s *Sale) Status() SaleStatus           { return s.status }
func (s *Sale) CreatedAt() time.Time         { return s.createdAt }
func (s *Sale) UpdatedAt() time.Time         { return s.updatedAt }
func (s *Sale) Changes() *ChangeTracker      { return s.changes }

// QuantitiesByProduct sums line quantities per product, for sales that list
// the same product on several lines.
func (s *Sale) QuantitiesByProduct() map[string]int64 {
	out := make(map[string]int64, len(s.items))
	for _, item := range s.items {
		out[item.productID] += item.quantity
	}
	return out
}

// Complete marks a pending sale paid.
func (s *Sale) Complete(now time.Time) error {
	if err := s.transition(SaleStatusCompleted, now); err != nil {
		return err
	}
	s.recordCompleted(now)
	return nil
}

// Cancel marks a pending sale as abandoned. Stock was never taken for it.
func (s *Sale) Cancel(reason string, now time.Time) error {
	if err := s.transition(SaleStatusCancelled, now); err != nil {
		return err
	}
	s.record(&SaleCancelledEvent{
		SaleID:      s.id,
		SaleNumber:  s.number,
		Reason:      reason,
		CancelledAt: now,
	})
	return nil
}

func (s *Sale) transition(next SaleStatus, now time.Time) error {
	if !s.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidSaleTransition, s.status, next)
	}
	s.status = next
	s.updatedAt = now
	s.changes.MarkDirty(FieldSaleStatus)
	return nil
}

func (s *Sale) recordCompleted(now time.Time) {
	s.record(&SaleCompletedEvent{
		SaleID:        s.id,
		SaleNumber:    s.number,
		CustomerID:    s.customerID,
		CashierID:     s.cashierID,
		PaymentMethod: s.paymentMethod,
		FinalAmount:   s.finalAmount.Copy(),
		CompletedAt:   now,
	})
}

// FormatSaleNumber renders "S" + YYYYMMDD + a zero-padded daily sequence.
func FormatSaleNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("S%s%04d", day.Format("20060102"), seq)
}
