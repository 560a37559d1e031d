package m_discount

const TableName = "discounts"

const (
	DiscountID    = "discount_id"
	Name          = "name"
	Description   = "description"
	Percentage    = "percentage"
	MinimumAmount = "minimum_amount"
	ValidFrom     = "valid_from"
	ValidTo       = "valid_to"
	IsActive      = "is_active"
	CreatedAt     = "created_at"
)

func Columns() []string {
	return []string{DiscountID, Name, Description, Percentage, MinimumAmount, ValidFrom, ValidTo, IsActive, CreatedAt}
}
