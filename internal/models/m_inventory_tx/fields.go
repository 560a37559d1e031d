package m_inventory_tx

const TableName = "inventory_transactions"

const (
	TransactionID = "transaction_id"
	ProductID     = "product_id"
	Kind          = "kind"
	Quantity      = "quantity"
	Notes         = "notes"
	UserID        = "user_id"
	CreatedAt     = "created_at"
)

func Columns() []string {
	return []string{TransactionID, ProductID, Kind, Quantity, Notes, UserID, CreatedAt}
}
