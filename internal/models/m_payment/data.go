package m_payment

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a row of the payments table. Outcome columns stay null
// until the provider callback arrives.
type Data struct {
	PaymentID         string             `spanner:"payment_id"`
	SaleID            string             `spanner:"sale_id"`
	CheckoutRequestID string             `spanner:"checkout_request_id"`
	MerchantRequestID string             `spanner:"merchant_request_id"`
	Status            string             `spanner:"status"`
	PhoneNumber       string             `spanner:"phone_number"`
	Amount            big.Rat            `spanner:"amount"`
	ReceiptNumber     spanner.NullString `spanner:"receipt_number"`
	TransactionDate   spanner.NullTime   `spanner:"transaction_date"`
	ResultCode        spanner.NullInt64  `spanner:"result_code"`
	ResultDesc        spanner.NullString `spanner:"result_desc"`
	RawPayload        spanner.NullJSON   `spanner:"raw_payload"`
	CreatedAt         time.Time          `spanner:"created_at"`
	UpdatedAt         time.Time          `spanner:"updated_at"`
}
