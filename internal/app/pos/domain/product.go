package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Product field names for change tracking.
const (
	FieldProductName   = "name"
	FieldProductPrice  = "price"
	FieldProductStock  = "stock_quantity"
	FieldProductActive = "is_active"
)

// DefaultMinStockLevel is the low-stock threshold for products created
// without one.
const DefaultMinStockLevel = 5

// ProductParams carries the fields of a new product.
type ProductParams struct {
	Name          string
	Description   string
	CategoryID    string
	SKU           string
	Price         *Money
	CostPrice     *Money
	StockQuantity int64
	// MinStockLevel nil means DefaultMinStockLevel.
	MinStockLevel *int64
}

// Product is a sellable catalog item and the owner of its stock level.
// Stock never goes below zero in a committed state.
type Product struct {
	events

	id            string
	name          string
	description   string
	categoryID    string
	sku           string
	price         *Money
	costPrice     *Money
	stockQuantity int64
	minStockLevel int64
	active        bool
	createdAt     time.Time
	updatedAt     time.Time

	changes *ChangeTracker
}

// NewProduct validates params and creates an active product.
func NewProduct(id string, p ProductParams, now time.Time) (*Product, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	sku := NormalizeSKU(p.SKU)
	if sku == "" {
		return nil, ErrEmptySKU
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		return nil, ErrInvalidCategory
	}
	if p.Price == nil || !p.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	cost := Zero()
	if p.CostPrice != nil {
		if p.CostPrice.IsNegative() {
			return nil, ErrInvalidCostPrice
		}
		cost = p.CostPrice.Copy()
	}
	minStock := int64(DefaultMinStockLevel)
	if p.MinStockLevel != nil {
		minStock = *p.MinStockLevel
	}
	if p.StockQuantity < 0 || minStock < 0 {
		return nil, ErrInvalidStockLevel
	}

	prod := &Product{
		id:            id,
		name:          name,
		description:   p.Description,
		categoryID:    p.CategoryID,
		sku:           sku,
		price:         p.Price.Copy(),
		costPrice:     cost,
		stockQuantity: p.StockQuantity,
		minStockLevel: minStock,
		active:        true,
		createdAt:     now,
		updatedAt:     now,
		changes:       NewChangeTracker(),
	}

	prod.record(&ProductCreatedEvent{
		ProductID:  id,
		Name:       name,
		SKU:        sku,
		CategoryID: p.CategoryID,
		Price:      prod.price.Copy(),
		Stock:      p.StockQuantity,
		CreatedAt:  now,
	})

	return prod, nil
}

// ReconstructProduct rebuilds a product loaded from storage.
func ReconstructProduct(
	id, name, description, categoryID, sku string,
	price, costPrice *Money,
	stockQuantity, minStockLevel int64,
	active bool,
	createdAt, updatedAt time.Time,
) *Product {
	return &Product{
		id:            id,
		name:          name,
		description:   description,
		categoryID:    categoryID,
		sku:           sku,
		price:         price,
		costPrice:     costPrice,
		stockQuantity: stockQuantity,
		minStockLevel: minStockLevel,
		active:        active,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		changes:       NewChangeTracker(),
	}
}

// NormalizeSKU trims and upper-cases a SKU so lookups are case-insensitive.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func (p *Product) ID() string              { return p.id }
func (p *Product) Name() string            { return p.name }
func (p *Product) Description() string     { return p.description }
func (p *Product) CategoryID() string      { return p.categoryID }
func (p *Product) SKU() string             { return p.sku }
func (p *Product) Price() *Money           { return p.price.Copy() }
func (p *Product) CostPrice() *Money       { return p.costPrice.Copy() }
func (p *Product) StockQuantity() int64    { return p.stockQuantity }
func (p *Product) MinStockLevel() int64    { return p.minStockLevel }
func (p *Product) IsActive() bool          { return p.active }
func (p *Product) CreatedAt() time.Time    { return p.createdAt }
func (p *Product) UpdatedAt() time.Time    { return p.updatedAt }
func (p *Product) Changes() *ChangeTracker { return p.changes }

// IsLowStock reports stock at or below the minimum level.
func (p *Product) IsLowStock() bool {
	return p.stockQuantity <= p.minStockLevel
}

// ProfitMarginPercent is (price - cost) / cost * 100, or 0 when cost is 0.
func (p *Product) ProfitMarginPercent() float64 {
	return ProfitMarginPercent(p.price, p.costPrice)
}

// ProfitMarginPercent computes a margin for read models that do not load the
// aggregate.
func ProfitMarginPercent(price, cost *Money) float64 {
	if cost == nil || !cost.IsPositive() {
		return 0
	}
	margin := new(big.Rat).Quo(price.Subtract(cost).Rat(), cost.Rat())
	margin.Mul(margin, big.NewRat(100, 1))
	f, _ := margin.Float64()
	return f
}

// CheckAvailable verifies the product can be sold in quantity qty right now.
func (p *Product) CheckAvailable(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !p.active {
		return fmt.Errorf("%w: %s", ErrProductNotActive, p.name)
	}
	if p.stockQuantity < qty {
		return &InsufficientStockError{
			ProductID:   p.id,
			ProductName: p.name,
			Requested:   qty,
			Available:   p.stockQuantity,
		}
	}
	return nil
}

// DeductStock removes qty units sold. It fails rather than go negative.
func (p *Product) DeductStock(qty int64, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if p.stockQuantity < qty {
		return &InsufficientStockError{
			ProductID:   p.id,
			ProductName: p.name,
			Requested:   qty,
			Available:   p.stockQuantity,
		}
	}
	p.applyDelta(-qty, now)
	return nil
}

// DeductStockClamped removes up to qty units and returns how many units
// could not be taken. Used when a payment has already been collected and the
// sale must complete regardless.
func (p *Product) DeductStockClamped(saleID string, qty int64, now time.Time) (shortfall int64, err error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	take := qty
	if p.stockQuantity < qty {
		take = p.stockQuantity
		shortfall = qty - take
	}
	if take > 0 {
		p.applyDelta(-take, now)
	}
	if shortfall > 0 {
		p.record(&ProductOversoldEvent{
			ProductID: p.id,
			SaleID:    saleID,
			Requested: qty,
			Shortfall: shortfall,
			Timestamp: now,
		})
	}
	return shortfall, nil
}

// AdjustStock applies a manual movement and returns the signed delta to
// record in the inventory ledger. in and return add qty, out removes qty,
// adjustment applies qty as a signed correction.
func (p *Product) AdjustStock(kind InventoryKind, qty int64, now time.Time) (int64, error) {
	var delta int64
	switch kind {
	case InventoryIn, InventoryReturn:
		if qty <= 0 {
			return 0, ErrInvalidQuantity
		}
		delta = qty
	case InventoryOut:
		if qty <= 0 {
			return 0, ErrInvalidQuantity
		}
		delta = -qty
	case InventoryAdjustment:
		if qty == 0 {
			return 0, ErrInvalidAdjustment
		}
		delta = qty
	default:
		return 0, fmt.Errorf("%w: %q cannot be applied manually", ErrInvalidInventoryKind, kind)
	}

	if p.stockQuantity+delta < 0 {
		return 0, &InsufficientStockError{
			ProductID:   p.id,
			ProductName: p.name,
			Requested:   -delta,
			Available:   p.stockQuantity,
		}
	}

	p.applyDelta(delta, now)
	p.record(&StockAdjustedEvent{
		ProductID: p.id,
		Kind:      kind,
		Delta:     delta,
		NewStock:  p.stockQuantity,
		Timestamp: now,
	})
	return delta, nil
}

// SetPrice changes the unit price. Past sale lines keep their snapshot.
func (p *Product) SetPrice(price *Money, now time.Time) error {
	if price == nil || !price.IsPositive() {
		return ErrInvalidPrice
	}
	if price.Equals(p.price) {
		return nil
	}
	old := p.price
	p.price = price.Copy()
	p.updatedAt = now
	p.changes.MarkDirty(FieldProductPrice)
	p.record(&ProductPriceChangedEvent{
		ProductID: p.id,
		OldPrice:  old.Copy(),
		NewPrice:  price.Copy(),
		ChangedAt: now,
	})
	return nil
}

// Deactivate withdraws the product from sale. Products are never deleted.
func (p *Product) Deactivate(now time.Time) error {
	if !p.active {
		return ErrAlreadyInactive
	}
	p.active = false
	p.updatedAt = now
	p.changes.MarkDirty(FieldProductActive)
	p.record(&ProductDeactivatedEvent{ProductID: p.id, Timestamp: now})
	return nil
}

// applyDelta moves stock and records a low-stock event when the level
// crosses the threshold.
func (p *Product) applyDelta(delta int64, now time.Time) {
	wasLow := p.IsLowStock()
	p.stockQuantity += delta
	p.updatedAt = now
	p.changes.MarkDirty(FieldProductStock)

	if !wasLow && p.IsLowStock() {
		p.record(&ProductLowStockEvent{
			ProductID:     p.id,
			Name:          p.name,
			StockQuantity: p.stockQuantity,
			MinStockLevel: p.minStockLevel,
			Timestamp:     now,
		})
	}
}
