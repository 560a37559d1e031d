package m_sale_counter

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a row of sale_counters. Day is YYYYMMDD.
type Data struct {
	Day       string    `spanner:"day"`
	LastSeq   int64     `spanner:"last_seq"`
	UpdatedAt time.Time `spanner:"updated_at"`
}

type Model struct{}

func NewModel() *Model {
	return &Model{}
}

// UpsertMut stores the new last sequence for a day.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertOrUpdateStruct(TableName, data)
	return mut
}
