package m_customer

import (
	"math/big"
	"time"
)

// Data represents a row of the customers table.
type Data struct {
	CustomerID    string    `spanner:"customer_id"`
	Name          string    `spanner:"name"`
	Email         string    `spanner:"email"`
	Phone         string    `spanner:"phone"`
	Address       string    `spanner:"address"`
	LoyaltyTier   string    `spanner:"loyalty_tier"`
	LoyaltyPoints int64     `spanner:"loyalty_points"`
	TotalSpent    big.Rat   `spanner:"total_spent"`
	CreatedAt     time.Time `spanner:"created_at"`
}
