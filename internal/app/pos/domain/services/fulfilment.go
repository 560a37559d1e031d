// Package services holds domain logic that spans several aggregates.
package services

import (
	"fmt"
	"time"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
)

// StockPolicy selects how a shortfall is handled when stock is taken.
type StockPolicy int

const (
	// StockStrict fails with InsufficientStockError. Used at the till.
	StockStrict StockPolicy = iota
	// StockClamp takes what is left and reports the shortfall. Used when a
	// mobile-money payment has already been collected.
	StockClamp
)

// Fulfilment lists what completing a sale changed.
type Fulfilment struct {
	Products      []*domain.Product
	Inventory     []*domain.InventoryTransaction
	PointsEarned  int64
	OversoldUnits int64
}

// Fulfiller applies the deferred effects of a completed sale: stock taken
// with one ledger row per sale line, and loyalty accrual.
type Fulfiller struct {
	newID func() string
}

func NewFulfiller(newID func() string) *Fulfiller {
	return &Fulfiller{newID: newID}
}

// Fulfil mutates the loaded products and customer in place. products must
// contain every product the sale lists; customer may be nil. Lines naming
// the same product are taken one after another, so a strict shortfall on a
// later line fails the whole fulfilment.
func (f *Fulfiller) Fulfil(
	sale *domain.Sale,
	products map[string]*domain.Product,
	customer *domain.Customer,
	policy StockPolicy,
	now time.Time,
) (*Fulfilment, error) {
	if sale.Status() != domain.SaleStatusCompleted {
		return nil, fmt.Errorf("%w: cannot fulfil a %s sale", domain.ErrInvalidSaleTransition, sale.Status())
	}

	out := &Fulfilment{}
	for _, productID := range productOrder(sale) {
		product, ok := products[productID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		out.Products = append(out.Products, product)
	}

	for _, item := range sale.Items() {
		product := products[item.ProductID()]
		qty := item.Quantity()

		note := domain.SaleNote(sale.Number())
		taken := qty
		switch policy {
		case StockClamp:
			shortfall, err := product.DeductStockClamped(sale.ID(), qty, now)
			if err != nil {
				return nil, err
			}
			if shortfall > 0 {
				taken = qty - shortfall
				out.OversoldUnits += shortfall
				note = domain.OversoldNote(sale.Number(), shortfall)
			}
		default:
			if err := product.DeductStock(qty, now); err != nil {
				return nil, err
			}
		}

		if taken == 0 {
			continue
		}
		txn, err := domain.NewInventoryTransaction(
			f.newID(), item.ProductID(), domain.InventorySale, -taken, note, sale.CashierID(), now,
		)
		if err != nil {
			return nil, err
		}
		out.Inventory = append(out.Inventory, txn)
	}

	if customer != nil {
		out.PointsEarned = customer.AccrueLoyalty(sale.ID(), sale.FinalAmount(), now)
	}
	return out, nil
}

// productOrder returns product ids in order of first appearance.
func productOrder(sale *domain.Sale) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, item := range sale.Items() {
		if !seen[item.ProductID()] {
			seen[item.ProductID()] = true
			ids = append(ids, item.ProductID())
		}
	}
	return ids
}
