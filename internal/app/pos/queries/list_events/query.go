package list_events

import (
	"context"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
)

// Request contains filtering parameters for listing events.
type Request struct {
	EventType   string // Filter by event type (e.g., "sale.completed")
	AggregateID string // Filter by aggregate ID
	Status      string // Filter by status ("pending", "completed", "failed")
	Limit       int    // Max number of events to return (default: 100)
}

// Query handles the list events query use case.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new list events query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute retrieves outbox events, newest first.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*contracts.OutboxEvent, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 100 // Default limit
	}
	if limit > 1000 {
		limit = 1000 // Max limit
	}

	return q.readModel.ListEvents(ctx, &contracts.EventFilter{
		EventType:   req.EventType,
		AggregateID: req.AggregateID,
		Status:      req.Status,
		Limit:       limit,
	})
}
