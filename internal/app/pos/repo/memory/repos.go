package memory

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/repo"
	"github.com/light-bringer/pos-service/internal/models/m_category"
	"github.com/light-bringer/pos-service/internal/models/m_customer"
	"github.com/light-bringer/pos-service/internal/models/m_discount"
	"github.com/light-bringer/pos-service/internal/models/m_inventory_tx"
	"github.com/light-bringer/pos-service/internal/models/m_payment"
	"github.com/light-bringer/pos-service/internal/models/m_price_history"
	"github.com/light-bringer/pos-service/internal/models/m_product"
	"github.com/light-bringer/pos-service/internal/models/m_sale"
	"github.com/light-bringer/pos-service/internal/models/m_sale_counter"
	"github.com/light-bringer/pos-service/internal/models/m_sale_item"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// Products returns the product repository.
func (s *Store) Products() contracts.ProductRepository {
	return &productRepo{s: s, model: m_product.NewModel()}
}

type productRepo struct {
	s     *Store
	model *m_product.Model
}

func (r *productRepo) InsertMut(product *domain.Product) *spanner.Mutation {
	data := *repo.ProductToData(product)
	return r.s.record(r.model.InsertMut(&data), func(t *tables) error {
		if _, ok := t.products[data.ProductID]; ok {
			return status.Errorf(codes.AlreadyExists, "products: row %s already exists", data.ProductID)
		}
		if _, ok := t.skuIndex[data.SKU]; ok {
			return status.Errorf(codes.AlreadyExists, "%s: unique key %s already exists", m_product.SKUIndex, data.SKU)
		}
		if _, ok := t.categories[data.CategoryID]; !ok {
			return status.Errorf(codes.FailedPrecondition, "products: category %s does not exist", data.CategoryID)
		}
		if data.StockQuantity < 0 {
			return status.Errorf(codes.OutOfRange, "products: check constraint stock_quantity >= 0 violated")
		}
		t.products[data.ProductID] = data
		t.skuIndex[data.SKU] = data.ProductID
		return nil
	})
}

func (r *productRepo) UpdateMut(product *domain.Product) *spanner.Mutation {
	updates := repo.ProductUpdates(product)
	data := *repo.ProductToData(product)
	return r.s.record(r.model.UpdateMut(product.ID(), updates), func(t *tables) error {
		row, ok := t.products[data.ProductID]
		if !ok {
			return status.Errorf(codes.NotFound, "products: row %s not found", data.ProductID)
		}
		for col := range updates {
			switch col {
			case m_product.Name:
				row.Name = data.Name
			case m_product.Price:
				row.Price = data.Price
			case m_product.StockQuantity:
				if data.StockQuantity < 0 {
					return status.Errorf(codes.OutOfRange, "products: check constraint stock_quantity >= 0 violated")
				}
				row.StockQuantity = data.StockQuantity
			case m_product.IsActive:
				row.IsActive = data.IsActive
			case m_product.UpdatedAt:
				row.UpdatedAt = data.UpdatedAt
			}
		}
		t.products[data.ProductID] = row
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, productID string) (*domain.Product, error) {
	var (
		data m_product.Data
		ok   bool
	)
	r.s.read(func(t *tables) { data, ok = t.products[productID] })
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return repo.ProductFromData(&data), nil
}

func (r *productRepo) GetByIDTx(ctx context.Context, tx committer.Txn, productID string) (*domain.Product, error) {
	if err := r.s.checkTxn(tx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, productID)
}

func (r *productRepo) SKUExists(_ context.Context, sku string) (bool, error) {
	var ok bool
	r.s.read(func(t *tables) { _, ok = t.skuIndex[domain.NormalizeSKU(sku)] })
	return ok, nil
}

// Categories returns the category repository.
func (s *Store) Categories() contracts.CategoryRepository {
	return &categoryRepo{s: s, model: m_category.NewModel()}
}

type categoryRepo struct {
	s     *Store
	model *m_category.Model
}

func (r *categoryRepo) InsertMut(category *domain.Category) *spanner.Mutation {
	data := *repo.CategoryToData(category)
	return r.s.record(r.model.InsertMut(&data), func(t *tables) error {
		if _, ok := t.categories[data.CategoryID]; ok {
			return status.Errorf(codes.AlreadyExists, "categories: row %s already exists", data.CategoryID)
		}
		t.categories[data.CategoryID] = data
		return nil
	})
}

func (r *categoryRepo) Exists(_ context.Context, categoryID string) (bool, error) {
	var ok bool
	r.s.read(func(t *tables) { _, ok = t.categories[categoryID] })
	return ok, nil
}

// Customers returns the customer repository.
func (s *Store) Customers() contracts.CustomerRepository {
	return &customerRepo{s: s, model: m_customer.NewModel()}
}

type customerRepo struct {
	s     *Store
	model *m_customer.Model
}

func (r *customerRepo) InsertMut(customer *domain.Customer) *spanner.Mutation {
	data := *repo.CustomerToData(customer)
	return r.s.record(r.model.InsertMut(&data), func(t *tables) error {
		if _, ok := t.customers[data.CustomerID]; ok {
			return status.Errorf(codes.AlreadyExists, "customers: row %s already exists", data.CustomerID)
		}
		t.customers[data.CustomerID] = data
		return nil
	})
}

func (r *customerRepo) UpdateMut(customer *domain.Customer) *spanner.Mutation {
	if !customer.Changes().Dirty(domain.FieldCustomerLoyalty) {
		return nil
	}
	data := *repo.CustomerToData(customer)
	mut := r.model.LoyaltyMut(data.CustomerID, data.LoyaltyPoints, customer.TotalSpent().Rat())
	return r.s.record(mut, func(t *tables) error {
		row, ok := t.customers[data.CustomerID]
		if !ok {
			return status.Errorf(codes.NotFound, "customers: row %s not found", data.CustomerID)
		}
		row.LoyaltyPoints = data.LoyaltyPoints
		row.TotalSpent = data.TotalSpent
		t.customers[data.CustomerID] = row
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, customerID string) (*domain.Customer, error) {
	var (
		data m_customer.Data
		ok   bool
	)
	r.s.read(func(t *tables) { data, ok = t.customers[customerID] })
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return repo.CustomerFromData(&data), nil
}

func (r *customerRepo) GetByIDTx(ctx context.Context, tx committer.Txn, customerID string) (*domain.Customer, error) {
	if err := r.s.checkTxn(tx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, customerID)
}

// Discounts returns the discount repository.
func (s *Store) Discounts() contracts.DiscountRepository {
	return &discountRepo{s: s, model: m_discount.NewModel()}
}

type discountRepo struct {
	s     *Store
	model *m_discount.Model
}

func (r *discountRepo) InsertMut(discount *domain.Discount) *spanner.Mutation {
	data := *repo.DiscountToData(discount)
	return r.s.record(r.model.InsertMut(&data), func(t *tables) error {
		if _, ok := t.discounts[data.DiscountID]; ok {
			return status.Errorf(codes.AlreadyExists, "discounts: row %s already exists", data.DiscountID)
		}
		t.discounts[data.DiscountID] = data
		return nil
	})
}

func (r *discountRepo) GetByID(_ context.Context, discountID string) (*domain.Discount, error) {
	var (
		data m_discount.Data
		ok   bool
	)
	r.s.read(func(t *tables) { data, ok = t.discounts[discountID] })
	if !ok {
		return nil, domain.ErrDiscountNotFound
	}
	return repo.DiscountFromData(&data), nil
}

func (r *discountRepo) GetByIDTx(ctx context.Context, tx committer.Txn, discountID string) (*domain.Discount, error) {
	if err := r.s.checkTxn(tx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, discountID)
}

// Inventory returns the inventory ledger repository.
func (s *Store) Inventory() contracts.InventoryRepository {
	return &inventoryRepo{s: s, model: m_inventory_tx.NewModel()}
}

type inventoryRepo struct {
	s     *Store
	model *m_inventory_tx.Model
}

func (r *inventoryRepo) InsertMut(txn *domain.InventoryTransaction) *spanner.Mutation {
	data := *repo.InventoryToData(txn)
	return r.s.record(r.model.InsertMut(&data), func(t *tables) error {
		if _, ok := t.products[data.ProductID]; !ok {
			return status.Errorf(codes.FailedPrecondition, "inventory_transactions: product %s does not exist", data.ProductID)
		}
		t.inventory = append(t.inventory, data)
		return nil
	})
}

// PriceHistory returns the price history repository.
func (s *Store) PriceHistory() contracts.PriceHistoryRepository {
	return &priceHistoryRepo{s: s, model: m_price_history.NewModel()}
}

type priceHistoryRepo struct {
	s     *Store
	model *m_price_history.Model
}

func (r *priceHistoryRepo) InsertMut(record *contracts.PriceHistoryRecord) *spanner.Mutation {
	data := *repo.PriceHistoryToData(record)
	return r.s.record(r.model.InsertMut(&data), func(t *tables) error {
		t.priceHistory = append(t.priceHistory, data)
		return nil
	})
}

// Sales returns the sale repository.
func (s *Store) Sales() contracts.SaleRepository {
	return &saleRepo{
		s:            s,
		saleModel:    m_sale.NewModel(),
		itemModel:    m_sale_item.NewModel(),
		counterModel: m_sale_counter.NewModel(),
	}
}

type saleRepo struct {
	s            *Store
	saleModel    *m_sale.Model
	itemModel    *m_sale_item.Model
	counterModel *m_sale_counter.Model
}

func (r *saleRepo) InsertMuts(sale *domain.Sale) []*spanner.Mutation {
	header, items := repo.SaleToData(sale)
	h := *header

	muts := make([]*spanner.Mutation, 0, len(items)+1)
	muts = append(muts, r.s.record(r.saleModel.InsertMut(&h), func(t *tables) error {
		if _, ok := t.sales[h.SaleID]; ok {
			return status.Errorf(codes.AlreadyExists, "sales: row %s already exists", h.SaleID)
		}
		if _, ok := t.saleNumbers[h.SaleNumber]; ok {
			return status.Errorf(codes.AlreadyExists, "%s: unique key %s already exists", m_sale.SaleNumberIndex, h.SaleNumber)
		}
		if h.FinalAmount.Sign() < 0 {
			return status.Errorf(codes.OutOfRange, "sales: check constraint final_amount >= 0 violated")
		}
		t.sales[h.SaleID] = h
		t.saleNumbers[h.SaleNumber] = h.SaleID
		return nil
	}))

	for _, item := range items {
		it := *item
		muts = append(muts, r.s.record(r.itemModel.InsertMut(&it), func(t *tables) error {
			if _, ok := t.sales[it.SaleID]; !ok {
				return status.Errorf(codes.NotFound, "sale_items: parent row %s not found", it.SaleID)
			}
			t.saleItems[it.SaleID] = append(t.saleItems[it.SaleID], it)
			return nil
		}))
	}
	return muts
}

func (r *saleRepo) UpdateMut(sale *domain.Sale) *spanner.Mutation {
	if !sale.Changes().Dirty(domain.FieldSaleStatus) {
		return nil
	}
	id, next, updatedAt := sale.ID(), string(sale.Status()), sale.UpdatedAt()
	return r.s.record(r.saleModel.StatusMut(id, next, updatedAt), func(t *tables) error {
		row, ok := t.sales[id]
		if !ok {
			return status.Errorf(codes.NotFound, "sales: row %s not found", id)
		}
		row.Status = next
		row.UpdatedAt = updatedAt
		t.sales[id] = row
		return nil
	})
}

func (r *saleRepo) GetByIDTx(_ context.Context, tx committer.Txn, saleID string) (*domain.Sale, error) {
	if err := r.s.checkTxn(tx); err != nil {
		return nil, err
	}
	var (
		header m_sale.Data
		items  []*m_sale_item.Data
		ok     bool
	)
	r.s.read(func(t *tables) {
		header, ok = t.sales[saleID]
		items = itemRows(t.saleItems[saleID])
	})
	if !ok {
		return nil, domain.ErrSaleNotFound
	}
	return repo.SaleFromData(&header, items)
}

func (r *saleRepo) NextNumberTx(_ context.Context, tx committer.Txn, now time.Time) (string, *spanner.Mutation, error) {
	if err := r.s.checkTxn(tx); err != nil {
		return "", nil, err
	}
	day := now.Format("20060102")
	var last int64
	r.s.read(func(t *tables) { last = t.counters[day].LastSeq })

	data := m_sale_counter.Data{Day: day, LastSeq: last + 1, UpdatedAt: now}
	mut := r.s.record(r.counterModel.UpsertMut(&data), func(t *tables) error {
		t.counters[day] = data
		return nil
	})
	return domain.FormatSaleNumber(now, data.LastSeq), mut, nil
}

// Payments returns the payment repository.
func (s *Store) Payments() contracts.PaymentRepository {
	return &paymentRepo{s: s, model: m_payment.NewModel()}
}

type paymentRepo struct {
	s     *Store
	model *m_payment.Model
}

func (r *paymentRepo) InsertMut(payment *domain.Payment) *spanner.Mutation {
	data := *repo.PaymentToData(payment)
	return r.s.record(r.model.InsertMut(&data), func(t *tables) error {
		if _, ok := t.payments[data.PaymentID]; ok {
			return status.Errorf(codes.AlreadyExists, "payments: row %s already exists", data.PaymentID)
		}
		if _, ok := t.checkouts[data.CheckoutRequestID]; ok {
			return status.Errorf(codes.AlreadyExists, "%s: unique key %s already exists", m_payment.CheckoutIndex, data.CheckoutRequestID)
		}
		if _, ok := t.sales[data.SaleID]; !ok {
			return status.Errorf(codes.FailedPrecondition, "payments: sale %s does not exist", data.SaleID)
		}
		t.payments[data.PaymentID] = data
		t.checkouts[data.CheckoutRequestID] = data.PaymentID
		return nil
	})
}

func (r *paymentRepo) UpdateMut(payment *domain.Payment) *spanner.Mutation {
	if !payment.Changes().Dirty(domain.FieldPaymentOutcome) {
		return nil
	}
	data := *repo.PaymentToData(payment)
	return r.s.record(r.model.OutcomeMut(&data), func(t *tables) error {
		row, ok := t.payments[data.PaymentID]
		if !ok {
			return status.Errorf(codes.NotFound, "payments: row %s not found", data.PaymentID)
		}
		row.Status = data.Status
		row.PhoneNumber = data.PhoneNumber
		row.ReceiptNumber = data.ReceiptNumber
		row.TransactionDate = data.TransactionDate
		row.ResultCode = data.ResultCode
		row.ResultDesc = data.ResultDesc
		row.RawPayload = data.RawPayload
		row.UpdatedAt = data.UpdatedAt
		t.payments[data.PaymentID] = row
		return nil
	})
}

func (r *paymentRepo) GetByCheckoutIDTx(_ context.Context, tx committer.Txn, checkoutRequestID string) (*domain.Payment, error) {
	if err := r.s.checkTxn(tx); err != nil {
		return nil, err
	}
	var (
		data m_payment.Data
		ok   bool
	)
	r.s.read(func(t *tables) {
		var id string
		if id, ok = t.checkouts[checkoutRequestID]; ok {
			data = t.payments[id]
		}
	})
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return repo.PaymentFromData(&data), nil
}

func itemRows(rows []m_sale_item.Data) []*m_sale_item.Data {
	out := make([]*m_sale_item.Data, 0, len(rows))
	for i := range rows {
		row := rows[i]
		out = append(out, &row)
	}
	return out
}

func paymentsForSale(t *tables, saleID string) []*m_payment.Data {
	var out []*m_payment.Data
	for _, p := range t.payments {
		if p.SaleID == saleID {
			row := p
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].PaymentID < out[j].PaymentID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
