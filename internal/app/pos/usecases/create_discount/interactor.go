package create_discount

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// Request contains the data needed to create a discount.
type Request struct {
	Name          string
	Description   string
	Percentage    *big.Rat // 0 to 100
	MinimumAmount *domain.Money
	ValidFrom     time.Time
	ValidTo       time.Time
}

// Interactor handles the create discount use case.
type Interactor struct {
	repo       contracts.DiscountRepository
	outboxRepo contracts.OutboxRepository
	tx         contracts.Transactor
	clock      clock.Clock
}

// NewInteractor creates a new create discount interactor.
func NewInteractor(
	repo contracts.DiscountRepository,
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

// Execute creates an active discount and returns its id.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	// 1. Create domain aggregate; the constructor validates
	discount, err := domain.NewDiscount(uuid.New().String(), domain.DiscountParams{
		Name:          req.Name,
		Description:   req.Description,
		Percentage:    req.Percentage,
		MinimumAmount: req.MinimumAmount,
		ValidFrom:     req.ValidFrom,
		ValidTo:       req.ValidTo,
	}, i.clock.Now())
	if err != nil {
		return "", err
	}

	// 2. Create commit plan
	plan := committer.NewPlan()
	plan.Add(i.repo.InsertMut(discount))

	// 3. Add outbox events
	for _, event := range discount.DomainEvents() {
		payload, err := json.Marshal(event)
		if err != nil {
			return "", fmt.Errorf("failed to serialize event: %w", err)
		}
		plan.Add(i.outboxRepo.InsertMut(i.outboxRepo.EnrichEvent(event, string(payload))))
	}

	// 4. Apply plan
	if err := i.tx.Apply(ctx, plan); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return discount.ID(), nil
}
