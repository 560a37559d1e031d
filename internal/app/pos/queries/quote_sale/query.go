package quote_sale

import (
	"context"
	"errors"
	"fmt"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
)

// Line is one cart entry.
type Line struct {
	ProductID string
	Quantity  int64
}

// Request contains the cart to price.
type Request struct {
	Lines      []Line
	DiscountID string
}

// Query prices a cart against the current catalog without writing anything.
type Query struct {
	products  contracts.ProductRepository
	discounts contracts.DiscountRepository
	pricing   *domain.PricingCalculator
	clock     clock.Clock
}

// NewQuery creates a new quote sale query.
func NewQuery(
	products contracts.ProductRepository,
	discounts contracts.DiscountRepository,
	pricing *domain.PricingCalculator,
	clock clock.Clock,
) *Query {
	return &Query{
		products:  products,
		discounts: discounts,
		pricing:   pricing,
		clock:     clock,
	}
}

// Execute returns the totals a commit would charge right now. Stock is
// checked the same way, but nothing is reserved.
func (q *Query) Execute(ctx context.Context, req *Request) (*domain.Totals, error) {
	if len(req.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	wanted := make(map[string]int64)
	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		wanted[l.ProductID] += l.Quantity
	}

	products := make(map[string]*domain.Product, len(wanted))
	lines := make([]domain.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			var err error
			p, err = q.products.GetByID(ctx, l.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, l.ProductID)
				}
				return nil, err
			}
			if err := p.CheckAvailable(wanted[l.ProductID]); err != nil {
				return nil, err
			}
			products[l.ProductID] = p
		}
		lines = append(lines, domain.CartLine{Product: p, Quantity: l.Quantity})
	}

	var discount *domain.Discount
	if req.DiscountID != "" {
		d, err := q.discounts.GetByID(ctx, req.DiscountID)
		switch {
		case errors.Is(err, domain.ErrDiscountNotFound):
		case err != nil:
			return nil, err
		default:
			discount = d
		}
	}

	return q.pricing.ComputeTotals(lines, discount, q.clock.Now())
}
