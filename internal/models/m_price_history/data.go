package m_price_history

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a price history record in the database.
type Data struct {
	HistoryID     string             `spanner:"history_id"`
	ProductID     string             `spanner:"product_id"`
	OldPrice      big.Rat            `spanner:"old_price"`
	NewPrice      big.Rat            `spanner:"new_price"`
	ChangedBy     string             `spanner:"changed_by"`
	ChangedReason spanner.NullString `spanner:"changed_reason"`
	ChangedAt     time.Time          `spanner:"changed_at"`
}

// Model provides type-safe database operations for price history.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}
