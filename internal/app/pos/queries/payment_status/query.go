package payment_status

import (
	"context"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
)

// Request contains the checkout request ID to poll.
type Request struct {
	CheckoutRequestID string
}

// Query handles the payment status query use case.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new payment status query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute returns the recorded outcome of a mobile-money payment. It stays
// pending until the provider result has been reconciled.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.PaymentStatusDTO, error) {
	if req.CheckoutRequestID == "" {
		return nil, domain.ErrPaymentNotFound
	}
	return q.readModel.GetPaymentStatus(ctx, req.CheckoutRequestID)
}
