package m_product

// Field name constants for the products table.
const (
	TableName = "products"

	ProductID     = "product_id"
	Name          = "name"
	Description   = "description"
	CategoryID    = "category_id"
	SKU           = "sku"
	Price         = "price"
	CostPrice     = "cost_price"
	StockQuantity = "stock_quantity"
	MinStockLevel = "min_stock_level"
	IsActive      = "is_active"
	CreatedAt     = "created_at"
	UpdatedAt     = "updated_at"
)

// SKUIndex is the unique secondary index on sku.
const SKUIndex = "idx_products_sku"

// Columns lists every column in Data order.
func Columns() []string {
	return []string{
		ProductID, Name, Description, CategoryID, SKU, Price, CostPrice,
		StockQuantity, MinStockLevel, IsActive, CreatedAt, UpdatedAt,
	}
}
