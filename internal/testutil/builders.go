package testutil

import (
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
)

// ProductBuilder helps create products for tests with a fluent interface.
type ProductBuilder struct {
	id         string
	name       string
	categoryID string
	sku        string
	price      *domain.Money
	cost       *domain.Money
	stock      int64
	minStock   int64
}

// NewProductBuilder creates a builder with default values: price 100,
// cost 60, stock 10 and a low-stock threshold of 5.
func NewProductBuilder(id string) *ProductBuilder {
	return &ProductBuilder{
		id:         id,
		name:       "Product " + id,
		categoryID: CategoryID,
		sku:        "SKU-" + id,
		price:      domain.FromUnits(100),
		cost:       domain.FromUnits(60),
		stock:      10,
		minStock:   domain.DefaultMinStockLevel,
	}
}

// WithName sets the product name
func (b *ProductBuilder) WithName(name string) *ProductBuilder {
	b.name = name
	return b
}

// WithSKU sets the product SKU
func (b *ProductBuilder) WithSKU(sku string) *ProductBuilder {
	b.sku = sku
	return b
}

// WithPrice sets the unit price in whole units
func (b *ProductBuilder) WithPrice(units int64) *ProductBuilder {
	b.price = domain.FromUnits(units)
	return b
}

// WithCost sets the cost price in whole units
func (b *ProductBuilder) WithCost(units int64) *ProductBuilder {
	b.cost = domain.FromUnits(units)
	return b
}

// WithStock sets the opening stock
func (b *ProductBuilder) WithStock(stock int64) *ProductBuilder {
	b.stock = stock
	return b
}

// WithMinStock sets the low-stock threshold
func (b *ProductBuilder) WithMinStock(min int64) *ProductBuilder {
	b.minStock = min
	return b
}

// Build creates the domain product with its creation events cleared.
func (b *ProductBuilder) Build() (*domain.Product, error) {
	minStock := b.minStock
	p, err := domain.NewProduct(b.id, domain.ProductParams{
		Name:          b.name,
		CategoryID:    b.categoryID,
		SKU:           b.sku,
		Price:         b.price,
		CostPrice:     b.cost,
		StockQuantity: b.stock,
		MinStockLevel: &minStock,
	}, Now)
	if err != nil {
		return nil, err
	}
	p.ClearEvents()
	return p, nil
}
