package adjust_stock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// Request contains the data needed to move stock by hand.
type Request struct {
	ProductID string
	Kind      domain.InventoryKind
	// Quantity is positive for in, out and return. For adjustment it is a
	// signed correction.
	Quantity int64
	Notes    string
	UserID   string
}

// Result is the applied movement.
type Result struct {
	TransactionID string
	Delta         int64
	NewStock      int64
}

// Interactor handles the adjust stock use case.
type Interactor struct {
	repo          contracts.ProductRepository
	inventoryRepo contracts.InventoryRepository
	outboxRepo    contracts.OutboxRepository
	tx            contracts.Transactor
	clock         clock.Clock
}

// NewInteractor creates a new adjust stock interactor.
func NewInteractor(
	repo contracts.ProductRepository,
	inventoryRepo contracts.InventoryRepository,
	outboxRepo contracts.OutboxRepository,
	tx contracts.Transactor,
	clock clock.Clock,
) *Interactor {
	return &Interactor{
		repo:          repo,
		inventoryRepo: inventoryRepo,
		outboxRepo:    outboxRepo,
		tx:            tx,
		clock:         clock,
	}
}

// Execute applies one manual stock movement and appends its ledger row in
// the same transaction. Stock may not go below zero.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Result, error) {
	// 1. Validate request
	kind, err := domain.ParseInventoryKind(string(req.Kind))
	if err != nil {
		return nil, err
	}
	if kind == domain.InventorySale {
		return nil, fmt.Errorf("%w: sale movements are recorded by sales", domain.ErrInvalidInventoryKind)
	}

	var result *Result
	err = i.tx.ReadWrite(ctx, func(ctx context.Context, tx committer.Txn) error {
		// 2. Load aggregate
		product, err := i.repo.GetByIDTx(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}

		// Clear events on function exit to prevent duplicates on retry
		defer product.ClearEvents()

		// 3. Call domain method
		now := i.clock.Now()
		delta, err := product.AdjustStock(kind, req.Quantity, now)
		if err != nil {
			return err
		}
		txn, err := domain.NewInventoryTransaction(uuid.New().String(), product.ID(), kind, delta, req.Notes, req.UserID, now)
		if err != nil {
			return err
		}

		// 4. Create commit plan
		plan := committer.NewPlan()
		plan.Add(i.repo.UpdateMut(product))
		plan.Add(i.inventoryRepo.InsertMut(txn))

		// 5. Add outbox events
		for _, event := range product.DomainEvents() {
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to serialize event: %w", err)
			}
			plan.Add(i.outboxRepo.InsertMut(i.outboxRepo.EnrichEvent(event, string(payload))))
		}

		if err := plan.BufferOn(tx); err != nil {
			return err
		}
		result = &Result{TransactionID: txn.ID, Delta: delta, NewStock: product.StockQuantity()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
