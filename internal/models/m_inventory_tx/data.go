package m_inventory_tx

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a row of the append-only inventory ledger.
type Data struct {
	TransactionID string    `spanner:"transaction_id"`
	ProductID     string    `spanner:"product_id"`
	Kind          string    `spanner:"kind"`
	Quantity      int64     `spanner:"quantity"`
	Notes         string    `spanner:"notes"`
	UserID        string    `spanner:"user_id"`
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
