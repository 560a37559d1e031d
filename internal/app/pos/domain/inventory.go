package domain

import (
	"fmt"
	"time"
)

// InventoryTransaction is an append-only stock ledger row. Quantity is the
// signed delta applied to the product in the same commit.
type InventoryTransaction struct {
	ID        string
	ProductID string
	Kind      InventoryKind
	Quantity  int64
	Notes     string
	UserID    string
	CreatedAt time.Time
}

func NewInventoryTransaction(id, productID string, kind InventoryKind, delta int64, notes, userID string, now time.Time) (*InventoryTransaction, error) {
	if _, err := ParseInventoryKind(string(kind)); err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, ErrInvalidAdjustment
	}
	return &InventoryTransaction{
		ID:        id,
		ProductID: productID,
		Kind:      kind,
		Quantity:  delta,
		Notes:     notes,
		UserID:    userID,
		CreatedAt: now,
	}, nil
}

// SaleNote is the ledger note for stock taken by a sale.
func SaleNote(saleNumber string) string {
	return "Sale " + saleNumber
}

// OversoldNote extends SaleNote with the units that could not be taken.
func OversoldNote(saleNumber string, shortfall int64) string {
	return fmt.Sprintf("Sale %s (oversold by %d)", saleNumber, shortfall)
}
