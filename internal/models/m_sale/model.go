package m_sale

import (
	"time"

	"cloud.google.com/go/spanner"
)

type Model struct{}

func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation inserting a sale header. Items are separate
// mutations on the interleaved sale_items table.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// StatusMut moves a sale to a new status.
func (m *Model) StatusMut(saleID, status string, updatedAt time.Time) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{SaleID, Status, UpdatedAt},
		[]interface{}{saleID, status, updatedAt},
	)
}
