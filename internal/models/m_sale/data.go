package m_sale

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a row of the sales table. Customer and discount are
// optional.
type Data struct {
	SaleID         string             `spanner:"sale_id"`
	SaleNumber     string             `spanner:"sale_number"`
	CustomerID     spanner.NullString `spanner:"customer_id"`
	CashierID      string             `spanner:"cashier_id"`
	DiscountID     spanner.NullString `spanner:"discount_id"`
	Subtotal       big.Rat            `spanner:"subtotal"`
	DiscountAmount big.Rat            `spanner:"discount_amount"`
	TaxAmount      big.Rat            `spanner:"tax_amount"`
	FinalAmount    big.Rat            `spanner:"final_amount"`
	PaymentMethod  string             `spanner:"payment_method"`
	AmountTendered big.Rat            `spanner:"amount_tendered"`
	ChangeDue      big.Rat            `spanner:"change_due"`
	Status         string             `spanner:"status"`
	CreatedAt      time.Time          `spanner:"created_at"`
	UpdatedAt      time.Time          `spanner:"updated_at"`
}
