package create_product

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// InitialStockNote is the ledger note for opening stock.
const InitialStockNote = "Initial stock"

// Request contains the data needed to create a product.
type Request struct {
	Name          string
	Description   string
	CategoryID    string
	SKU           string
	Price         *domain.Money
	CostPrice     *domain.Money
	StockQuantity int64
	MinStockLevel *int64 // nil means the default threshold
	CreatedBy     string
}

// Interactor handles the create product use case.
type Interactor struct {
	repo          contracts.ProductRepository
	categoryRepo  contracts.CategoryRepository
	inventoryRepo contracts.InventoryRepository
	outboxRepo    contracts.OutboxRepository
	tx            contracts.Transactor
	clock         clock.Clock
}

// NewInteractor creates a new create product interactor.
func NewInteractor(
	repo contracts.ProductRepository,
	categoryRepo contracts.CategoryRepository,
	inventoryRepo contracts.InventoryRepository,
	outboxRepo contracts.OutboxRepository,
	tx contracts.Transactor,
	clock clock.Clock,
) *Interactor {
	return &Interactor{
		repo:          repo,
		categoryRepo:  categoryRepo,
		inventoryRepo: inventoryRepo,
		outboxRepo:    outboxRepo,
		tx:            tx,
		clock:         clock,
	}
}

// Execute creates a new product following the Golden Mutation Pattern.
// Opening stock is recorded as an "in" ledger row in the same commit.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	// 1. Validate request
	if err := i.validate(ctx, req); err != nil {
		return "", err
	}

	// 2. Create domain aggregate (new product)
	productID := uuid.New().String()
	now := i.clock.Now()

	product, err := domain.NewProduct(productID, domain.ProductParams{
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		SKU:           req.SKU,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
	}, now)
	if err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}

	// 3. Create commit plan
	plan := committer.NewPlan()

	// 4. Add repository mutations
	plan.Add(i.repo.InsertMut(product))
	if product.StockQuantity() > 0 {
		txn, err := domain.NewInventoryTransaction(
			uuid.New().String(), productID, domain.InventoryIn, product.StockQuantity(), InitialStockNote, req.CreatedBy, now,
		)
		if err != nil {
			return "", err
		}
		plan.Add(i.inventoryRepo.InsertMut(txn))
	}

	// 5. Add outbox events
	for _, event := range product.DomainEvents() {
		payload, err := i.serializeEvent(event)
		if err != nil {
			return "", fmt.Errorf("failed to serialize event: %w", err)
		}
		outboxEvent := i.outboxRepo.EnrichEvent(event, payload)
		plan.Add(i.outboxRepo.InsertMut(outboxEvent))
	}

	// 6. Apply plan (usecase applies, not handler)
	if err := i.tx.Apply(ctx, plan); err != nil {
		// The unique index catches a SKU created since validation.
		if status.Code(err) == codes.AlreadyExists {
			return "", domain.ErrDuplicateSKU
		}
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return product.ID(), nil
}

// validate validates the request.
func (i *Interactor) validate(ctx context.Context, req *Request) error {
	sku := domain.NormalizeSKU(req.SKU)
	if sku == "" {
		return domain.ErrEmptySKU
	}
	if req.CategoryID == "" {
		return domain.ErrInvalidCategory
	}
	if req.Price == nil || !req.Price.IsPositive() {
		return domain.ErrInvalidPrice
	}

	exists, err := i.categoryRepo.Exists(ctx, req.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrCategoryNotFound
	}

	taken, err := i.repo.SKUExists(ctx, sku)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateSKU
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
