package m_category

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a row of the categories table.
type Data struct {
	CategoryID  string    `spanner:"category_id"`
	Name        string    `spanner:"name"`
	Description string    `spanner:"description"`
	CreatedAt   time.Time `spanner:"created_at"`
}

// Model provides type-safe database operations for categories.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}
