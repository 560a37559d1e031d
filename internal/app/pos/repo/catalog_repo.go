package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/models/m_category"
	"github.com/light-bringer/pos-service/internal/models/m_customer"
	"github.com/light-bringer/pos-service/internal/models/m_discount"
	"github.com/light-bringer/pos-service/internal/models/m_inventory_tx"
	"github.com/light-bringer/pos-service/internal/models/m_price_history"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// CategoryRepo implements CategoryRepository for Spanner.
type CategoryRepo struct {
	client *spanner.Client
	model  *m_category.Model
}

func NewCategoryRepo(client *spanner.Client) contracts.CategoryRepository {
	return &CategoryRepo{client: client, model: m_category.NewModel()}
}

func (r *CategoryRepo) InsertMut(category *domain.Category) *spanner.Mutation {
	return r.model.InsertMut(CategoryToData(category))
}

func (r *CategoryRepo) Exists(ctx context.Context, categoryID string) (bool, error) {
	_, err := r.client.Single().ReadRow(ctx, m_category.TableName, spanner.Key{categoryID}, []string{m_category.CategoryID})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check category existence: %w", err)
	}
	return true, nil
}

// CustomerRepo implements CustomerRepository for Spanner.
type CustomerRepo struct {
	client *spanner.Client
	model  *m_customer.Model
}

func NewCustomerRepo(client *spanner.Client) contracts.CustomerRepository {
	return &CustomerRepo{client: client, model: m_customer.NewModel()}
}

func (r *CustomerRepo) InsertMut(customer *domain.Customer) *spanner.Mutation {
	return r.model.InsertMut(CustomerToData(customer))
}

func (r *CustomerRepo) UpdateMut(customer *domain.Customer) *spanner.Mutation {
	if !customer.Changes().Dirty(domain.FieldCustomerLoyalty) {
		return nil
	}
	return r.model.LoyaltyMut(customer.ID(), customer.LoyaltyPoints(), customer.TotalSpent().Rat())
}

func (r *CustomerRepo) GetByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	row, err := r.client.Single().ReadRow(ctx, m_customer.TableName, spanner.Key{customerID}, m_customer.Columns())
	return customerFromRow(row, err)
}

func (r *CustomerRepo) GetByIDTx(ctx context.Context, tx committer.Txn, customerID string) (*domain.Customer, error) {
	rw, err := committer.ReadWriteTxn(tx)
	if err != nil {
		return nil, err
	}
	row, err := rw.ReadRow(ctx, m_customer.TableName, spanner.Key{customerID}, m_customer.Columns())
	return customerFromRow(row, err)
}

func customerFromRow(row *spanner.Row, err error) (*domain.Customer, error) {
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to read customer: %w", err)
	}
	var data m_customer.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse customer: %w", err)
	}
	return CustomerFromData(&data), nil
}

// DiscountRepo implements DiscountRepository for Spanner.
type DiscountRepo struct {
	client *spanner.Client
	model  *m_discount.Model
}

func NewDiscountRepo(client *spanner.Client) contracts.DiscountRepository {
	return &DiscountRepo{client: client, model: m_discount.NewModel()}
}

func (r *DiscountRepo) InsertMut(discount *domain.Discount) *spanner.Mutation {
	return r.model.InsertMut(DiscountToData(discount))
}

func (r *DiscountRepo) GetByID(ctx context.Context, discountID string) (*domain.Discount, error) {
	row, err := r.client.Single().ReadRow(ctx, m_discount.TableName, spanner.Key{discountID}, m_discount.Columns())
	return discountFromRow(row, err)
}

func (r *DiscountRepo) GetByIDTx(ctx context.Context, tx committer.Txn, discountID string) (*domain.Discount, error) {
	rw, err := committer.ReadWriteTxn(tx)
	if err != nil {
		return nil, err
	}
	row, err := rw.ReadRow(ctx, m_discount.TableName, spanner.Key{discountID}, m_discount.Columns())
	return discountFromRow(row, err)
}

func discountFromRow(row *spanner.Row, err error) (*domain.Discount, error) {
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("failed to read discount: %w", err)
	}
	var data m_discount.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse discount: %w", err)
	}
	return DiscountFromData(&data), nil
}

// InventoryRepo implements InventoryRepository for Spanner.
type InventoryRepo struct {
	model *m_inventory_tx.Model
}

func NewInventoryRepo() contracts.InventoryRepository {
	return &InventoryRepo{model: m_inventory_tx.NewModel()}
}

func (r *InventoryRepo) InsertMut(txn *domain.InventoryTransaction) *spanner.Mutation {
	return r.model.InsertMut(InventoryToData(txn))
}

// PriceHistoryRepo implements PriceHistoryRepository for Spanner.
type PriceHistoryRepo struct {
	model *m_price_history.Model
}

// NewPriceHistoryRepo creates a new PriceHistoryRepo.
func NewPriceHistoryRepo() contracts.PriceHistoryRepository {
	return &PriceHistoryRepo{model: m_price_history.NewModel()}
}

// InsertMut creates a mutation for inserting a price history record.
func (r *PriceHistoryRepo) InsertMut(record *contracts.PriceHistoryRecord) *spanner.Mutation {
	return r.model.InsertMut(PriceHistoryToData(record))
}
