package contracts

import (
	"context"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// ProductRepository defines product persistence. Repositories return
// mutations; they never apply them.
type ProductRepository interface {
	// InsertMut creates a mutation inserting a new product.
	InsertMut(product *domain.Product) *spanner.Mutation

	// UpdateMut creates a mutation for the dirty fields, or nil.
	UpdateMut(product *domain.Product) *spanner.Mutation

	GetByID(ctx context.Context, productID string) (*domain.Product, error)

	// GetByIDTx reads inside a read-write transaction, so the row is locked
	// until commit.
	GetByIDTx(ctx context.Context, tx committer.Txn, productID string) (*domain.Product, error)

	// SKUExists looks the normalized SKU up in the unique index.
	SKUExists(ctx context.Context, sku string) (bool, error)
}

// CategoryRepository defines category persistence.
type CategoryRepository interface {
	InsertMut(category *domain.Category) *spanner.Mutation
	Exists(ctx context.Context, categoryID string) (bool, error)
}

// CustomerRepository defines customer persistence.
type CustomerRepository interface {
	InsertMut(customer *domain.Customer) *spanner.Mutation
	// UpdateMut writes accrued loyalty, or returns nil when unchanged.
	UpdateMut(customer *domain.Customer) *spanner.Mutation
	GetByID(ctx context.Context, customerID string) (*domain.Customer, error)
	GetByIDTx(ctx context.Context, tx committer.Txn, customerID string) (*domain.Customer, error)
}

// DiscountRepository defines discount persistence.
type DiscountRepository interface {
	InsertMut(discount *domain.Discount) *spanner.Mutation
	GetByID(ctx context.Context, discountID string) (*domain.Discount, error)
	GetByIDTx(ctx context.Context, tx committer.Txn, discountID string) (*domain.Discount, error)
}

// InventoryRepository appends stock ledger rows.
type InventoryRepository interface {
	InsertMut(txn *domain.InventoryTransaction) *spanner.Mutation
}
