package m_discount

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a row of the discounts table.
type Data struct {
	DiscountID    string    `spanner:"discount_id"`
	Name          string    `spanner:"name"`
	Description   string    `spanner:"description"`
	Percentage    big.Rat   `spanner:"percentage"`
	MinimumAmount big.Rat   `spanner:"minimum_amount"`
	ValidFrom     time.Time `spanner:"valid_from"`
	ValidTo       time.Time `spanner:"valid_to"`
	IsActive      bool      `spanner:"is_active"`
	CreatedAt     time.Time `spanner:"created_at"`
}

type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}
