package create_customer

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

// Request contains the data needed to register a customer.
type Request struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Tier    string // empty means bronze
}

// Interactor handles the create customer use case.
type Interactor struct {
	repo       contracts.CustomerRepository
	outboxRepo contracts.OutboxRepository
	tx         contracts.Transactor
	clock      clock.Clock
}

// NewInteractor creates a new create customer interactor.
func NewInteractor(
	repo contracts.CustomerRepository,
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

// Execute creates a customer and returns its id.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	// 1. Validate request
	var tier domain.LoyaltyTier
	if req.Tier != "" {
		parsed, err := domain.ParseLoyaltyTier(req.Tier)
		if err != nil {
			return "", err
		}
		tier = parsed
	}

	// 2. Create domain aggregate
	customer, err := domain.NewCustomer(uuid.New().String(), domain.CustomerParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Tier:    tier,
	}, i.clock.Now())
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	// 3. Create commit plan
	plan := committer.NewPlan()
	plan.Add(i.repo.InsertMut(customer))

	// 4. Add outbox events
	for _, event := range customer.DomainEvents() {
		payload, err := json.Marshal(event)
		if err != nil {
			return "", fmt.Errorf("failed to serialize event: %w", err)
		}
		plan.Add(i.outboxRepo.InsertMut(i.outboxRepo.EnrichEvent(event, string(payload))))
	}

	// 5. Apply plan
	if err := i.tx.Apply(ctx, plan); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return customer.ID(), nil
}
