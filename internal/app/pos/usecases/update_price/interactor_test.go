package update_price

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/repo/memory"
	"github.com/light-bringer/pos-service/internal/testutil"
)

func newInteractor(store *memory.Store) *Interactor {
	return NewInteractor(store.Products(), store.Outbox(), store.PriceHistory(), store, testutil.NewMockClock())
}

func TestUpdatePrice(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	testutil.SeedProducts(t, store, testutil.NewProductBuilder("soap").WithPrice(100))

	err := newInteractor(store).Execute(ctx, &Request{
		ProductID:     "soap",
		NewPrice:      domain.FromUnits(120),
		ChangedBy:     "manager-1",
		ChangedReason: "supplier increase",
	})
	require.NoError(t, err)

	product, err := store.Products().GetByID(ctx, "soap")
	require.NoError(t, err)
	assert.Equal(t, "120.00", product.Price().String())

	history := store.PriceHistoryFor("soap")
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].OldPrice.Cmp(big.NewRat(100, 1)))
	assert.Equal(t, 0, history[0].NewPrice.Cmp(big.NewRat(120, 1)))
	assert.Equal(t, "manager-1", history[0].ChangedBy)
	assert.Equal(t, "supplier increase", history[0].ChangedReason.StringVal)

	testutil.AssertOutboxEvent(t, store.ReadModel(), "product.price_changed")
}

func TestUpdatePrice_SamePriceWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	testutil.SeedProducts(t, store, testutil.NewProductBuilder("soap").WithPrice(100))

	err := newInteractor(store).Execute(ctx, &Request{ProductID: "soap", NewPrice: domain.FromUnits(100), ChangedBy: "m"})
	require.NoError(t, err)

	assert.Empty(t, store.PriceHistoryFor("soap"))
	testutil.AssertOutboxEventCount(t, store.ReadModel(), "product.price_changed", 0)
}

func TestUpdatePrice_Validation(t *testing.T) {
	store := testutil.NewStore(t)
	testutil.SeedProducts(t, store, testutil.NewProductBuilder("soap"))
	interactor := newInteractor(store)

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{"zero price", &Request{ProductID: "soap", NewPrice: domain.Zero(), ChangedBy: "m"}, domain.ErrInvalidPrice},
		{"missing author", &Request{ProductID: "soap", NewPrice: domain.FromUnits(5)}, ErrMissingChangedBy},
		{"unknown product", &Request{ProductID: "nope", NewPrice: domain.FromUnits(5), ChangedBy: "m"}, domain.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := interactor.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
