package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/models/m_product"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// ProductRepo implements ProductRepository for Spanner.
type ProductRepo struct {
	client *spanner.Client
	model  *m_product.Model
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(client *spanner.Client) contracts.ProductRepository {
	return &ProductRepo{
		client: client,
		model:  m_product.NewModel(),
	}
}

// InsertMut creates a mutation for inserting a new product.
func (r *ProductRepo) InsertMut(product *domain.Product) *spanner.Mutation {
	return r.model.InsertMut(ProductToData(product))
}

// UpdateMut creates a mutation for updating a product (only dirty fields).
func (r *ProductRepo) UpdateMut(product *domain.Product) *spanner.Mutation {
	return r.model.UpdateMut(product.ID(), ProductUpdates(product))
}

// GetByID retrieves a product by ID, reconstructing the domain aggregate.
func (r *ProductRepo) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	row, err := r.client.Single().ReadRow(ctx, m_product.TableName, spanner.Key{productID}, m_product.Columns())
	return productFromRow(row, err)
}

// GetByIDTx reads a product inside a read-write transaction.
func (r *ProductRepo) GetByIDTx(ctx context.Context, tx committer.Txn, productID string) (*domain.Product, error) {
	rw, err := committer.ReadWriteTxn(tx)
	if err != nil {
		return nil, err
	}
	row, err := rw.ReadRow(ctx, m_product.TableName, spanner.Key{productID}, m_product.Columns())
	return productFromRow(row, err)
}

// SKUExists checks the unique SKU index.
func (r *ProductRepo) SKUExists(ctx context.Context, sku string) (bool, error) {
	_, err := r.client.Single().ReadRowUsingIndex(ctx, m_product.TableName, m_product.SKUIndex,
		spanner.Key{domain.NormalizeSKU(sku)}, []string{m_product.ProductID})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check sku: %w", err)
	}
	return true, nil
}

func productFromRow(row *spanner.Row, err error) (*domain.Product, error) {
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	var data m_product.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}
	return ProductFromData(&data), nil
}
