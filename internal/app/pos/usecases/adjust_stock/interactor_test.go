package adjust_stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/testutil"
)

func TestAdjustStock(t *testing.T) {
	tests := []struct {
		name      string
		kind      domain.InventoryKind
		quantity  int64
		wantDelta int64
		wantStock int64
		wantErr   error
	}{
		{"receive", domain.InventoryIn, 5, 5, 15, nil},
		{"customer return", domain.InventoryReturn, 2, 2, 12, nil},
		{"write off", domain.InventoryOut, 4, -4, 6, nil},
		{"count correction down", domain.InventoryAdjustment, -3, -3, 7, nil},
		{"count correction up", domain.InventoryAdjustment, 3, 3, 13, nil},
		{"out beyond stock", domain.InventoryOut, 11, 0, 10, domain.ErrInsufficientStock},
		{"negative receive", domain.InventoryIn, -1, 0, 10, domain.ErrInvalidQuantity},
		{"zero adjustment", domain.InventoryAdjustment, 0, 0, 10, domain.ErrInvalidAdjustment},
		{"sale kind refused", domain.InventorySale, 1, 0, 10, domain.ErrInvalidInventoryKind},
		{"unknown kind", "theft", 1, 0, 10, domain.ErrInvalidInventoryKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := testutil.NewStore(t)
			testutil.SeedProducts(t, store, testutil.NewProductBuilder("soap").WithStock(10))
			interactor := NewInteractor(store.Products(), store.Inventory(), store.Outbox(), store, testutil.NewMockClock())

			result, err := interactor.Execute(ctx, &Request{
				ProductID: "soap",
				Kind:      tt.kind,
				Quantity:  tt.quantity,
				Notes:     "stock take",
				UserID:    "manager-1",
			})
			assert.Equal(t, tt.wantStock, testutil.Stock(t, store, "soap"))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, store.InventoryFor("soap"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelta, result.Delta)
			assert.Equal(t, tt.wantStock, result.NewStock)

			ledger := store.InventoryFor("soap")
			require.Len(t, ledger, 1)
			assert.Equal(t, tt.wantDelta, ledger[0].Quantity)
			assert.Equal(t, string(tt.kind), ledger[0].Kind)
			testutil.AssertOutboxEvent(t, store.ReadModel(), "product.stock_adjusted")
		})
	}
}

func TestAdjustStock_CrossingThresholdEmitsLowStock(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	testutil.SeedProducts(t, store, testutil.NewProductBuilder("soap").WithStock(8).WithMinStock(5))
	interactor := NewInteractor(store.Products(), store.Inventory(), store.Outbox(), store, testutil.NewMockClock())

	_, err := interactor.Execute(ctx, &Request{ProductID: "soap", Kind: domain.InventoryOut, Quantity: 3})
	require.NoError(t, err)

	testutil.AssertOutboxEvent(t, store.ReadModel(), "product.low_stock")
}
