package m_customer

// Field name constants for the customers table.
const (
	TableName = "customers"

	CustomerID    = "customer_id"
	Name          = "name"
	Email         = "email"
	Phone         = "phone"
	Address       = "address"
	LoyaltyTier   = "loyalty_tier"
	LoyaltyPoints = "loyalty_points"
	TotalSpent    = "total_spent"
	CreatedAt     = "created_at"
)

func Columns() []string {
	return []string{CustomerID, Name, Email, Phone, Address, LoyaltyTier, LoyaltyPoints, TotalSpent, CreatedAt}
}
