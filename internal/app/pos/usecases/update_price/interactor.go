package update_price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// ErrMissingChangedBy is returned when a price change names no author.
var ErrMissingChangedBy = errors.New("changed_by is required")

// Request contains the data needed to update a product's price.
type Request struct {
	ProductID     string
	NewPrice      *domain.Money
	ChangedBy     string // User/system identifier
	ChangedReason string // Optional explanation for price change
}

// Interactor handles the update price use case.
type Interactor struct {
	repo             contracts.ProductRepository
	outboxRepo       contracts.OutboxRepository
	priceHistoryRepo contracts.PriceHistoryRepository
	tx               contracts.Transactor
	clock            clock.Clock
}

// NewInteractor creates a new update price interactor.
func NewInteractor(
	repo contracts.ProductRepository,
	outboxRepo contracts.OutboxRepository,
	priceHistoryRepo contracts.PriceHistoryRepository,
	tx contracts.Transactor,
	clock clock.Clock,
) *Interactor {
	return &Interactor{
		repo:             repo,
		outboxRepo:       outboxRepo,
		priceHistoryRepo: priceHistoryRepo,
		tx:               tx,
		clock:            clock,
	}
}

// Execute updates a product's price following the Golden Mutation Pattern.
// Setting the current price again writes nothing.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	// 1. Validate request
	if err := i.validate(req); err != nil {
		return err
	}

	// 2. Read, change and write in one transaction so the recorded old
	// price is the one actually replaced.
	return i.tx.ReadWrite(ctx, func(ctx context.Context, tx committer.Txn) error {
		product, err := i.repo.GetByIDTx(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}

		// Clear events on function exit to prevent duplicates on retry
		defer product.ClearEvents()

		// 3. Call domain method
		now := i.clock.Now()
		oldPrice := product.Price() // Capture old price before change
		if err := product.SetPrice(req.NewPrice, now); err != nil {
			return err
		}

		// 4. Create commit plan
		plan := committer.NewPlan()

		// 5. Add repository mutation (only if changes exist)
		mut := i.repo.UpdateMut(product)
		if mut == nil {
			return nil // No changes
		}
		plan.Add(mut)

		// 6. Add price history record
		plan.Add(i.priceHistoryRepo.InsertMut(&contracts.PriceHistoryRecord{
			HistoryID:     uuid.New().String(),
			ProductID:     req.ProductID,
			OldPrice:      oldPrice,
			NewPrice:      req.NewPrice,
			ChangedBy:     req.ChangedBy,
			ChangedReason: req.ChangedReason,
			ChangedAt:     now,
		}))

		// 7. Add outbox events
		for _, event := range product.DomainEvents() {
			payload, err := i.serializeEvent(event)
			if err != nil {
				return fmt.Errorf("failed to serialize event: %w", err)
			}
			outboxEvent := i.outboxRepo.EnrichEvent(event, payload)
			plan.Add(i.outboxRepo.InsertMut(outboxEvent))
		}

		// 8. Buffer plan
		return plan.BufferOn(tx)
	})
}

// validate validates the request.
func (i *Interactor) validate(req *Request) error {
	if req.ProductID == "" {
		return domain.ErrProductNotFound
	}
	if req.NewPrice == nil || !req.NewPrice.IsPositive() {
		return domain.ErrInvalidPrice
	}
	if req.ChangedBy == "" {
		return ErrMissingChangedBy
	}
	return nil
}

// serializeEvent converts a domain event to JSON payload.
func (i *Interactor) serializeEvent(event domain.DomainEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
