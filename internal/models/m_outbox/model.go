package m_outbox

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the outbox_events table.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// MarkMut records the outcome of a publish attempt.
func (m *Model) MarkMut(eventID, status string, processedAt time.Time, retryCount int64, errMsg spanner.NullString) *spanner.Mutation {
	return spanner.Update(TableName,
		[]string{EventID, Status, ProcessedAt, RetryCount, ErrorMessage},
		[]interface{}{eventID, status, spanner.NullTime{Time: processedAt, Valid: true}, retryCount, errMsg},
	)
}

// DeleteMut removes a processed event during retention cleanup.
func (m *Model) DeleteMut(eventID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{eventID})
}
