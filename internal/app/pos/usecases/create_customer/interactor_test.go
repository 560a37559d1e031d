package create_customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/testutil"
)

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	interactor := NewInteractor(store.Customers(), store.Outbox(), store, testutil.NewMockClock())

	t.Run("defaults to bronze", func(t *testing.T) {
		id, err := interactor.Execute(ctx, &Request{Name: "Wanjiku", Phone: "0712345678"})
		require.NoError(t, err)

		customer, err := store.Customers().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.TierBronze, customer.Tier())
		assert.Zero(t, customer.LoyaltyPoints())
		assert.True(t, customer.TotalSpent().IsZero())
	})

	t.Run("explicit tier", func(t *testing.T) {
		id, err := interactor.Execute(ctx, &Request{Name: "Otieno", Tier: "Gold"})
		require.NoError(t, err)

		customer, err := store.Customers().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.TierGold, customer.Tier())
	})

	t.Run("rejects", func(t *testing.T) {
		_, err := interactor.Execute(ctx, &Request{Name: ""})
		assert.ErrorIs(t, err, domain.ErrEmptyName)

		_, err = interactor.Execute(ctx, &Request{Name: "Akinyi", Tier: "diamond"})
		assert.ErrorIs(t, err, domain.ErrInvalidLoyaltyTier)
	})

	testutil.AssertOutboxEventCount(t, store.ReadModel(), "customer.created", 2)
}
