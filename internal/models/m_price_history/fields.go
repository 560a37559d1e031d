package m_price_history

const TableName = "price_history"

const (
	HistoryID     = "history_id"
	ProductID     = "product_id"
	OldPrice      = "old_price"
	NewPrice      = "new_price"
	ChangedBy     = "changed_by"
	ChangedReason = "changed_reason"
	ChangedAt     = "changed_at"
)

func Columns() []string {
	return []string{HistoryID, ProductID, OldPrice, NewPrice, ChangedBy, ChangedReason, ChangedAt}
}
