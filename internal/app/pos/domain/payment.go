package domain

import (
	"time"
)

// Payment field names for change tracking.
const (
	FieldPaymentOutcome = "outcome"
)

// ResultCodeCancelledByUser is the provider code for a prompt the customer
// dismissed.
const ResultCodeCancelledByUser = 1032

// Payment tracks one mobile-money push. It is created pending when the push
// is accepted and finalized exactly once by the provider callback.
type Payment struct {
	events

	id                string
	saleID            string
	checkoutRequestID string
	merchantRequestID string
	status            PaymentStatus
	phoneNumber       string
	amount            *Money
	receiptNumber     string
	transactionDate   *time.Time
	resultCode        *int64
	resultDesc        string
	rawPayload        string
	createdAt         time.Time
	updatedAt         time.Time

	changes *ChangeTracker
}

func NewPayment(id, saleID, checkoutRequestID, merchantRequestID, phone string, amount *Money, now time.Time) *Payment {
	p := &Payment{
		id:                id,
		saleID:            saleID,
		checkoutRequestID: checkoutRequestID,
		merchantRequestID: merchantRequestID,
		status:            PaymentStatusPending,
		phoneNumber:       phone,
		amount:            amount.Copy(),
		createdAt:         now,
		updatedAt:         now,
		changes:           NewChangeTracker(),
	}
	p.record(&PaymentInitiatedEvent{
		PaymentID:         id,
		SaleID:            saleID,
		CheckoutRequestID: checkoutRequestID,
		Amount:            amount.Copy(),
		InitiatedAt:       now,
	})
	return p
}

// PaymentSnapshot is the stored state of a payment.
type PaymentSnapshot struct {
	ID                string
	SaleID            string
	CheckoutRequestID string
	MerchantRequestID string
	Status            PaymentStatus
	PhoneNumber       string
	Amount            *Money
	ReceiptNumber     string
	TransactionDate   *time.Time
	ResultCode        *int64
	ResultDesc        string
	RawPayload        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ReconstructPayment(s PaymentSnapshot) *Payment {
	return &Payment{
		id:                s.ID,
		saleID:            s.SaleID,
		checkoutRequestID: s.CheckoutRequestID,
		merchantRequestID: s.MerchantRequestID,
		status:            s.Status,
		phoneNumber:       s.PhoneNumber,
		amount:            s.Amount,
		receiptNumber:     s.ReceiptNumber,
		transactionDate:   s.TransactionDate,
		resultCode:        s.ResultCode,
		resultDesc:        s.ResultDesc,
		rawPayload:        s.RawPayload,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		changes:           NewChangeTracker(),
	}
}

func (p *Payment) ID() string                  { return p.id }
func (p *Payment) SaleID() string              { return p.saleID }
func (p *Payment) CheckoutRequestID() string   { return p.checkoutRequestID }
func (p *Payment) MerchantRequestID() string   { return p.merchantRequestID }
func (p *Payment) Status() PaymentStatus       { return p.status }
func (p *Payment) PhoneNumber() string         { return p.phoneNumber }
func (p *Payment) Amount() *Money              { return p.amount.Copy() }
func (p *Payment) ReceiptNumber() string       { return p.receiptNumber }
func (p *Payment) TransactionDate() *time.Time { return p.transactionDate }
func (p *Payment) ResultCode() *int64          { return p.resultCode }
func (p *Payment) ResultDesc() string          { return p.resultDesc }
func (p *Payment) RawPayload() string          { return p.rawPayload }
func (p *Payment) CreatedAt() time.Time        { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time        { return p.updatedAt }
func (p *Payment) Changes() *ChangeTracker     { return p.changes }

// Confirmation is the provider's success report.
type Confirmation struct {
	ReceiptNumber   string
	PhoneNumber     string
	TransactionDate *time.Time
	ResultDesc      string
	RawPayload      string
}

// MarkSucceeded records a successful payment. Only pending payments may be
// finalized; anything else is a duplicate delivery.
func (p *Payment) MarkSucceeded(c Confirmation, now time.Time) error {
	if p.status.IsTerminal() {
		return ErrPaymentAlreadyFinalized
	}
	code := int64(0)
	p.status = PaymentStatusSuccess
	p.receiptNumber = c.ReceiptNumber
	if c.PhoneNumber != "" {
		p.phoneNumber = c.PhoneNumber
	}
	p.transactionDate = c.TransactionDate
	p.resultCode = &code
	p.resultDesc = c.ResultDesc
	p.rawPayload = c.RawPayload
	p.updatedAt = now
	p.changes.MarkDirty(FieldPaymentOutcome)

	p.record(&PaymentSucceededEvent{
		PaymentID:         p.id,
		SaleID:            p.saleID,
		CheckoutRequestID: p.checkoutRequestID,
		ReceiptNumber:     c.ReceiptNumber,
		ConfirmedAt:       now,
	})
	return nil
}

// MarkFailed records a failed or cancelled payment.
func (p *Payment) MarkFailed(resultCode int64, resultDesc, rawPayload string, now time.Time) error {
	if p.status.IsTerminal() {
		return ErrPaymentAlreadyFinalized
	}
	p.status = PaymentStatusFailed
	if resultCode == ResultCodeCancelledByUser {
		p.status = PaymentStatusCancelled
	}
	p.resultCode = &resultCode
	p.resultDesc = resultDesc
	p.rawPayload = rawPayload
	p.updatedAt = now
	p.changes.MarkDirty(FieldPaymentOutcome)

	p.record(&PaymentFailedEvent{
		PaymentID:         p.id,
		SaleID:            p.saleID,
		CheckoutRequestID: p.checkoutRequestID,
		Status:            p.status,
		ResultCode:        resultCode,
		ResultDesc:        resultDesc,
		FailedAt:          now,
	})
	return nil
}
