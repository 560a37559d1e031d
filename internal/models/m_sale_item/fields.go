package m_sale_item

// sale_items is interleaved in sales; the key is (sale_id, item_id).
const (
	TableName = "sale_items"

	SaleID      = "sale_id"
	ItemID      = "item_id"
	ProductID   = "product_id"
	ProductName = "product_name"
	Quantity    = "quantity"
	UnitPrice   = "unit_price"
	LineTotal   = "line_total"
)

func Columns() []string {
	return []string{SaleID, ItemID, ProductID, ProductName, Quantity, UnitPrice, LineTotal}
}
