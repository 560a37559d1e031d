package m_customer

import (
	"math/big"

	"cloud.google.com/go/spanner"
)

type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// LoyaltyMut writes the accrued loyalty columns of one customer.
func (m *Model) LoyaltyMut(customerID string, points int64, totalSpent *big.Rat) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{CustomerID, LoyaltyPoints, TotalSpent},
		[]interface{}{customerID, points, totalSpent},
	)
}
