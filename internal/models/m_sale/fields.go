package m_sale

// Field name constants for the sales table.
const (
	TableName = "sales"

	SaleID         = "sale_id"
	SaleNumber     = "sale_number"
	CustomerID     = "customer_id"
	CashierID      = "cashier_id"
	DiscountID     = "discount_id"
	Subtotal       = "subtotal"
	DiscountAmount = "discount_amount"
	TaxAmount      = "tax_amount"
	FinalAmount    = "final_amount"
	PaymentMethod  = "payment_method"
	AmountTendered = "amount_tendered"
	ChangeDue      = "change_due"
	Status         = "status"
	CreatedAt      = "created_at"
	UpdatedAt      = "updated_at"
)

// SaleNumberIndex is the unique secondary index on sale_number.
const SaleNumberIndex = "idx_sales_sale_number"

func Columns() []string {
	return []string{
		SaleID, SaleNumber, CustomerID, CashierID, DiscountID,
		Subtotal, DiscountAmount, TaxAmount, FinalAmount,
		PaymentMethod, AmountTendered, ChangeDue, Status, CreatedAt, UpdatedAt,
	}
}
