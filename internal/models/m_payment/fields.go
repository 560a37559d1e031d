package m_payment

// Field name constants for the payments table.
const (
	TableName = "payments"

	PaymentID         = "payment_id"
	SaleID            = "sale_id"
	CheckoutRequestID = "checkout_request_id"
	MerchantRequestID = "merchant_request_id"
	Status            = "status"
	PhoneNumber       = "phone_number"
	Amount            = "amount"
	ReceiptNumber     = "receipt_number"
	TransactionDate   = "transaction_date"
	ResultCode        = "result_code"
	ResultDesc        = "result_desc"
	RawPayload        = "raw_payload"
	CreatedAt         = "created_at"
	UpdatedAt         = "updated_at"
)

// Secondary indexes.
const (
	CheckoutIndex = "idx_payments_checkout_request_id"
	SaleIndex     = "idx_payments_sale_id"
)

func Columns() []string {
	return []string{
		PaymentID, SaleID, CheckoutRequestID, MerchantRequestID, Status, PhoneNumber, Amount,
		ReceiptNumber, TransactionDate, ResultCode, ResultDesc, RawPayload, CreatedAt, UpdatedAt,
	}
}
