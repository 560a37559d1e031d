package create_category

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// Request contains the data needed to create a category.
type Request struct {
	Name        string
	Description string
}

// Interactor handles the create category use case.
type Interactor struct {
	repo       contracts.CategoryRepository
	outboxRepo contracts.OutboxRepository
	tx         contracts.Transactor
	clock      clock.Clock
}

// NewInteractor creates a new create category interactor.
func NewInteractor(
	repo contracts.CategoryRepository,
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

// Execute creates a category and returns its id.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	// 1. Validate request
	if strings.TrimSpace(req.Name) == "" {
		return "", domain.ErrEmptyName
	}

	// 2. Create domain aggregate
	category, err := domain.NewCategory(uuid.New().String(), req.Name, req.Description, i.clock.Now())
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}

	// 3. Create commit plan
	plan := committer.NewPlan()
	plan.Add(i.repo.InsertMut(category))

	// 4. Add outbox events
	for _, event := range category.DomainEvents() {
		payload, err := i.serializeEvent(event)
		if err != nil {
			return "", fmt.Errorf("failed to serialize event: %w", err)
		}
		plan.Add(i.outboxRepo.InsertMut(i.outboxRepo.EnrichEvent(event, payload)))
	}

	// 5. Apply plan
	if err := i.tx.Apply(ctx, plan); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return category.ID(), nil
}

// serializeEvent converts a domain event to JSON payload.
func (i *Interactor) serializeEvent(event domain.DomainEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
