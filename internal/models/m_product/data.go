package m_product

import (
	"math/big"
	"time"
)

// Data represents a row of the products table.
type Data struct {
	ProductID     string    `spanner:"product_id"`
	Name          string    `spanner:"name"`
	Description   string    `spanner:"description"`
	CategoryID    string    `spanner:"category_id"`
	SKU           string    `spanner:"sku"`
	Price         big.Rat   `spanner:"price"`
	CostPrice     big.Rat   `spanner:"cost_price"`
	StockQuantity int64     `spanner:"stock_quantity"`
	MinStockLevel int64     `spanner:"min_stock_level"`
	IsActive      bool      `spanner:"is_active"`
	CreatedAt     time.Time `spanner:"created_at"`
	UpdatedAt     time.Time `spanner:"updated_at"`
}
