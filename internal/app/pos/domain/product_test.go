package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	valid := func() ProductParams {
		return ProductParams{
			Name:          "Maize Flour 2kg",
			CategoryID:    "cat-1",
			SKU:           " mf-2kg ",
			Price:         FromUnits(180),
			CostPrice:     FromUnits(150),
			StockQuantity: 40,
		}
	}

	t.Run("valid product", func(t *testing.T) {
		p, err := NewProduct("p-1", valid(), now)
		require.NoError(t, err)

		assert.Equal(t, "MF-2KG", p.SKU())
		assert.True(t, p.IsActive())
		assert.Equal(t, int64(DefaultMinStockLevel), p.MinStockLevel())
		assert.InDelta(t, 20.0, p.ProfitMarginPercent(), 0.0001)
		require.Len(t, p.DomainEvents(), 1)
		assert.Equal(t, "product.created", p.DomainEvents()[0].EventType())
	})

	tests := []struct {
		name    string
		mutate  func(*ProductParams)
		wantErr error
	}{
		{"empty name", func(p *ProductParams) { p.Name = "  " }, ErrEmptyName},
		{"empty sku", func(p *ProductParams) { p.SKU = "" }, ErrEmptySKU},
		{"empty category", func(p *ProductParams) { p.CategoryID = "" }, ErrInvalidCategory},
		{"zero price", func(p *ProductParams) { p.Price = Zero() }, ErrInvalidPrice},
		{"negative cost", func(p *ProductParams) { p.CostPrice = FromUnits(-1) }, ErrInvalidCostPrice},
		{"negative stock", func(p *ProductParams) { p.StockQuantity = -1 }, ErrInvalidStockLevel},
		{"negative min stock", func(p *ProductParams) { m := int64(-1); p.MinStockLevel = &m }, ErrInvalidStockLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid()
			tt.mutate(&params)
			_, err := NewProduct("p-1", params, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProduct_ProfitMarginWithZeroCost(t *testing.T) {
	assert.Equal(t, 0.0, ProfitMarginPercent(FromUnits(10), Zero()))
}

func TestProduct_CheckAvailable(t *testing.T) {
	p := testProduct(t, "p1", "10", 3)

	require.NoError(t, p.CheckAvailable(3))

	err := p.CheckAvailable(4)
	require.ErrorIs(t, err, ErrInsufficientStock)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "p1", stockErr.ProductID)
	assert.Equal(t, int64(4), stockErr.Requested)
	assert.Equal(t, int64(3), stockErr.Available)

	require.NoError(t, p.Deactivate(pricingNow))
	assert.ErrorIs(t, p.CheckAvailable(1), ErrProductNotActive)
}

func TestProduct_DeductStock(t *testing.T) {
	t.Run("crossing the threshold records low stock once", func(t *testing.T) {
		p := testProduct(t, "p1", "10", 8)

		require.NoError(t, p.DeductStock(2, pricingNow))
		assert.Equal(t, int64(6), p.StockQuantity())
		assert.Empty(t, p.DomainEvents())

		require.NoError(t, p.DeductStock(1, pricingNow))
		require.Len(t, p.DomainEvents(), 1)
		assert.Equal(t, "product.low_stock", p.DomainEvents()[0].EventType())

		require.NoError(t, p.DeductStock(1, pricingNow))
		assert.Len(t, p.DomainEvents(), 1)
		assert.True(t, p.Changes().Dirty(FieldProductStock))
	})

	t.Run("never goes negative", func(t *testing.T) {
		p := testProduct(t, "p1", "10", 1)
		assert.ErrorIs(t, p.DeductStock(2, pricingNow), ErrInsufficientStock)
		assert.Equal(t, int64(1), p.StockQuantity())
	})
}

func TestProduct_DeductStockClamped(t *testing.T) {
	p := testProduct(t, "p1", "10", 2)

	shortfall, err := p.DeductStockClamped("sale-1", 5, pricingNow)
	require.NoError(t, err)
	assert.Equal(t, int64(3), shortfall)
	assert.Equal(t, int64(0), p.StockQuantity())

	var types []string
	for _, e := range p.DomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, "product.oversold")
}

func TestProduct_AdjustStock(t *testing.T) {
	tests := []struct {
		name      string
		kind      InventoryKind
		qty       int64
		wantDelta int64
		wantErr   error
	}{
		{"stock in", InventoryIn, 5, 5, nil},
		{"return", InventoryReturn, 2, 2, nil},
		{"stock out", InventoryOut, 4, -4, nil},
		{"negative adjustment", InventoryAdjustment, -3, -3, nil},
		{"positive adjustment", InventoryAdjustment, 7, 7, nil},
		{"zero adjustment", InventoryAdjustment, 0, 0, ErrInvalidAdjustment},
		{"non-positive stock in", InventoryIn, 0, 0, ErrInvalidQuantity},
		{"out below zero", InventoryOut, 11, 0, ErrInsufficientStock},
		{"sale kind refused", InventorySale, 1, 0, ErrInvalidInventoryKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProduct(t, "p1", "10", 10)
			delta, err := p.AdjustStock(tt.kind, tt.qty, pricingNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, int64(10), p.StockQuantity())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelta, delta)
			assert.Equal(t, 10+tt.wantDelta, p.StockQuantity())
		})
	}
}

func TestProduct_SetPrice(t *testing.T) {
	p := testProduct(t, "p1", "10", 10)

	assert.ErrorIs(t, p.SetPrice(Zero(), pricingNow), ErrInvalidPrice)

	require.NoError(t, p.SetPrice(FromUnits(10), pricingNow))
	assert.False(t, p.Changes().HasChanges(), "same price is a no-op")

	require.NoError(t, p.SetPrice(FromCents(1250), pricingNow))
	assert.Equal(t, "12.50", p.Price().String())
	assert.True(t, p.Changes().Dirty(FieldProductPrice))
	require.Len(t, p.DomainEvents(), 1)
	event := p.DomainEvents()[0].(*ProductPriceChangedEvent)
	assert.Equal(t, "10.00", event.OldPrice.String())
}

func TestProduct_Deactivate(t *testing.T) {
	p := testProduct(t, "p1", "10", 10)

	require.NoError(t, p.Deactivate(pricingNow))
	assert.False(t, p.IsActive())
	assert.ErrorIs(t, p.Deactivate(pricingNow), ErrAlreadyInactive)
}
