package contracts

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// SaleRepository defines sale persistence.
type SaleRepository interface {
	// InsertMuts creates the header mutation followed by one per item.
	InsertMuts(sale *domain.Sale) []*spanner.Mutation

	// UpdateMut writes a status change, or returns nil when unchanged.
	UpdateMut(sale *domain.Sale) *spanner.Mutation

	// GetByIDTx loads a sale with its items inside a transaction.
	GetByIDTx(ctx context.Context, tx committer.Txn, saleID string) (*domain.Sale, error)

	// NextNumberTx reserves the next sale number for the day of now. The
	// returned mutation must be committed with the sale.
	NextNumberTx(ctx context.Context, tx committer.Txn, now time.Time) (string, *spanner.Mutation, error)
}

// PaymentRepository defines mobile-money payment persistence.
type PaymentRepository interface {
	InsertMut(payment *domain.Payment) *spanner.Mutation

	// UpdateMut writes the provider outcome, or returns nil when unchanged.
	UpdateMut(payment *domain.Payment) *spanner.Mutation

	// GetByCheckoutIDTx finds a payment through the unique checkout index.
	GetByCheckoutIDTx(ctx context.Context, tx committer.Txn, checkoutRequestID string) (*domain.Payment, error)
}
