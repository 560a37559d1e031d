package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/models/m_outbox"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/query"
)

// OutboxRepo implements OutboxRepository for Spanner.
type OutboxRepo struct {
	client *spanner.Client
	model  *m_outbox.Model
	clock  clock.Clock
}

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(client *spanner.Client, clk clock.Clock) contracts.OutboxRepository {
	return &OutboxRepo{
		client: client,
		model:  m_outbox.NewModel(),
		clock:  clk,
	}
}

// InsertMut creates a mutation for inserting an outbox event.
func (r *OutboxRepo) InsertMut(event *contracts.OutboxEvent) *spanner.Mutation {
	return r.model.InsertMut(OutboxToData(event))
}

// EnrichEvent converts a domain event to an outbox event with metadata.
func (r *OutboxRepo) EnrichEvent(event domain.DomainEvent, payload string) *contracts.OutboxEvent {
	return EnrichEvent(event, payload, r.clock.Now())
}

// ListPending returns events the relay should publish next.
func (r *OutboxRepo) ListPending(ctx context.Context, maxRetries int64, limit int) ([]*contracts.OutboxEvent, error) {
	stmt := PendingQuery(maxRetries, limit).Build()

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var events []*contracts.OutboxEvent
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate outbox: %w", err)
		}
		var data m_outbox.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse outbox event: %w", err)
		}
		events = append(events, OutboxFromData(&data))
	}
	return events, nil
}

// MarkMut records a publish attempt.
func (r *OutboxRepo) MarkMut(event *contracts.OutboxEvent, publishErr error, now time.Time) *spanner.Mutation {
	status, retries, errMsg := MarkOutcome(event, publishErr)
	return r.model.MarkMut(event.EventID, status, now, retries, errMsg)
}

// DeleteProcessedBefore prunes delivered events and events out of retries.
func (r *OutboxRepo) DeleteProcessedBefore(ctx context.Context, cutoff time.Time, maxRetries int64) (int64, error) {
	stmt := spanner.Statement{
		SQL: `DELETE FROM outbox_events
			WHERE processed_at < @cutoff
			  AND (status = @completed OR (status = @failed AND retry_count >= @maxRetries))`,
		Params: map[string]interface{}{
			"cutoff":     cutoff,
			"completed":  m_outbox.StatusCompleted,
			"failed":     m_outbox.StatusFailed,
			"maxRetries": maxRetries,
		},
	}

	var deleted int64
	_, err := r.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		n, err := txn.Update(ctx, stmt)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune outbox: %w", err)
	}
	return deleted, nil
}

// EnrichEvent stamps a domain event with an id and the pending status.
func EnrichEvent(event domain.DomainEvent, payload string, now time.Time) *contracts.OutboxEvent {
	return &contracts.OutboxEvent{
		EventID:     uuid.New().String(),
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		Payload:     payload,
		Status:      m_outbox.StatusPending,
		CreatedAt:   now,
	}
}

// PendingQuery selects publishable events, oldest first.
func PendingQuery(maxRetries int64, limit int) *query.Builder {
	return query.From(m_outbox.TableName).
		Select(m_outbox.Columns()...).
		Where(query.In(m_outbox.Status, m_outbox.StatusPending, m_outbox.StatusFailed)).
		Where(query.Lt(m_outbox.RetryCount, maxRetries)).
		OrderBy(m_outbox.CreatedAt, query.Asc).
		Limit(int64(limit))
}
