package contracts

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
)

// OutboxEvent represents an enriched domain event ready for persistence.
type OutboxEvent struct {
	EventID      string
	EventType    string
	AggregateID  string
	Payload      string // JSON
	Status       string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
	RetryCount   int64
	ErrorMessage string
}

// OutboxRepository defines outbox persistence for writers and the relay.
type OutboxRepository interface {
	// EnrichEvent converts a domain event to an outbox event with metadata.
	EnrichEvent(event domain.DomainEvent, payload string) *OutboxEvent

	InsertMut(event *OutboxEvent) *spanner.Mutation

	// ListPending returns pending events and failed events that have retries
	// left, oldest first.
	ListPending(ctx context.Context, maxRetries int64, limit int) ([]*OutboxEvent, error)

	// MarkMut records a publish attempt. A nil publishErr marks the event
	// completed; otherwise it is failed with the retry count incremented.
	MarkMut(event *OutboxEvent, publishErr error, now time.Time) *spanner.Mutation

	// DeleteProcessedBefore removes completed events, and failed events out
	// of retries, processed before cutoff. It returns the number deleted.
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time, maxRetries int64) (int64, error)
}
