package relay_outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// DefaultMaxRetries is how many failed publishes an event gets before it is
// left failed for an operator.
const DefaultMaxRetries = 5

// Result counts one relay pass.
type Result struct {
	Published int
	Failed    int
}

// Interactor handles the relay outbox use case.
type Interactor struct {
	outboxRepo contracts.OutboxRepository
	publisher  contracts.EventPublisher
	tx         contracts.Transactor
	maxRetries int64
	clock      clock.Clock
	logger     *slog.Logger
}

// NewInteractor creates a new relay outbox interactor. maxRetries <= 0
// means DefaultMaxRetries.
func NewInteractor(
	outboxRepo contracts.OutboxRepository,
	publisher contracts.EventPublisher,
	tx contracts.Transactor,
	maxRetries int64,
	clock clock.Clock,
	logger *slog.Logger,
) *Interactor {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Interactor{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		tx:         tx,
		maxRetries: maxRetries,
		clock:      clock,
		logger:     logger,
	}
}

// Execute publishes up to batchSize pending events, oldest first. Each
// outcome is committed as soon as it is known so a crash mid-batch
// republishes at most one event.
func (i *Interactor) Execute(ctx context.Context, batchSize int) (*Result, error) {
	// 1. Load pending events
	events, err := i.outboxRepo.ListPending(ctx, i.maxRetries, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending events: %w", err)
	}

	result := &Result{}
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// 2. Publish
		publishErr := i.publisher.Publish(ctx, event)
		if publishErr != nil {
			result.Failed++
			i.logger.Warn("event publish failed",
				"event_id", event.EventID,
				"event_type", event.EventType,
				"retry_count", event.RetryCount+1,
				"error", publishErr,
			)
		} else {
			result.Published++
		}

		// 3. Record the outcome
		plan := committer.NewPlan()
		plan.Add(i.outboxRepo.MarkMut(event, publishErr, i.clock.Now()))
		if err := i.tx.Apply(ctx, plan); err != nil {
			return result, fmt.Errorf("failed to mark event %s: %w", event.EventID, err)
		}
	}

	if len(events) > 0 {
		i.logger.Info("outbox relayed", "published", result.Published, "failed", result.Failed)
	}
	return result, nil
}

// Prune deletes completed events, and failed events out of retries, that
// were processed more than retention ago.
func (i *Interactor) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := i.clock.Now().Add(-retention)
	deleted, err := i.outboxRepo.DeleteProcessedBefore(ctx, cutoff, i.maxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to prune outbox: %w", err)
	}
	if deleted > 0 {
		i.logger.Info("outbox pruned", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}
