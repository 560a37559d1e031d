package deactivate_product

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// Request contains the data needed to deactivate a product.
type Request struct {
	ProductID string
}

// Interactor handles the deactivate product use case.
type Interactor struct {
	repo       contracts.ProductRepository
	outboxRepo contracts.OutboxRepository
	tx         contracts.Transactor
	clock      clock.Clock
}

// NewInteractor creates a new deactivate product interactor.
func NewInteractor(
	repo contracts.ProductRepository,
	outboxRepo contracts.OutboxRepository,
	tx contracts.Transactor,
	clock clock.Clock,
) *Interactor {
	return &Interactor{
		repo:       repo,
		outboxRepo: outboxRepo,
		tx:         tx,
		clock:      clock,
	}
}

// Execute withdraws a product from sale. The row is kept so past sales
// still resolve it.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	return i.tx.ReadWrite(ctx, func(ctx context.Context, tx committer.Txn) error {
		// 1. Load aggregate
		product, err := i.repo.GetByIDTx(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}

		// Clear events on function exit to prevent duplicates on retry
		defer product.ClearEvents()

		// 2. Call domain method
		if err := product.Deactivate(i.clock.Now()); err != nil {
			return err
		}

		// 3. Create commit plan
		plan := committer.NewPlan()
		plan.Add(i.repo.UpdateMut(product))

		// 4. Add outbox events
		for _, event := range product.DomainEvents() {
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to serialize event: %w", err)
			}
			plan.Add(i.outboxRepo.InsertMut(i.outboxRepo.EnrichEvent(event, string(payload))))
		}

		return plan.BufferOn(tx)
	})
}
