package contracts

import (
	"context"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
)

// PushRequest asks the customer's phone to approve a payment.
type PushRequest struct {
	PhoneNumber string
	Amount      *domain.Money
	// Reference is shown on the customer's statement, typically the sale
	// number.
	Reference   string
	Description string
}

// PushResponse is the provider's acknowledgement of a push.
type PushResponse struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResponseCode      string
	ResponseDesc      string
	CustomerMessage   string
}

// PaymentGateway initiates mobile-money pushes.
type PaymentGateway interface {
	InitiatePush(ctx context.Context, req *PushRequest) (*PushResponse, error)
}

// EventPublisher delivers outbox events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, event *OutboxEvent) error
}
