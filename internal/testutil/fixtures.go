package testutil

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/repo/memory"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

// CategoryID is the category every fixture product belongs to.
const CategoryID = "cat-beverages"

// NewStore creates an in-memory store seeded with the fixture category.
func NewStore(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore(NewMockClock())
	category, err := domain.NewCategory(CategoryID, "Beverages", "Hot and cold drinks", Now)
	require.NoError(t, err)

	plan := committer.NewPlan()
	plan.Add(store.Categories().InsertMut(category))
	require.NoError(t, store.Apply(context.Background(), plan), "failed to seed category")
	return store
}

// SeedProducts inserts built products directly, bypassing the use cases.
func SeedProducts(t *testing.T, store *memory.Store, builders ...*ProductBuilder) {
	t.Helper()

	plan := committer.NewPlan()
	for _, b := range builders {
		p, err := b.Build()
		require.NoError(t, err)
		plan.Add(store.Products().InsertMut(p))
	}
	require.NoError(t, store.Apply(context.Background(), plan), "failed to seed products")
}

// SeedCustomer inserts a bronze customer with no points.
func SeedCustomer(t *testing.T, store *memory.Store, id string) {
	t.Helper()

	c, err := domain.NewCustomer(id, domain.CustomerParams{Name: "Customer " + id, Phone: "0712345678"}, Now)
	require.NoError(t, err)

	plan := committer.NewPlan()
	plan.Add(store.Customers().InsertMut(c))
	require.NoError(t, store.Apply(context.Background(), plan), "failed to seed customer")
}

// SeedDiscount inserts a discount of pct percent valid for a day either
// side of Now.
func SeedDiscount(t *testing.T, store *memory.Store, id string, pct int64, minimum int64) {
	t.Helper()

	d, err := domain.NewDiscount(id, domain.DiscountParams{
		Name:          "Discount " + id,
		Percentage:    big.NewRat(pct, 1),
		MinimumAmount: domain.FromUnits(minimum),
		ValidFrom:     Now.Add(-24 * time.Hour),
		ValidTo:       Now.Add(24 * time.Hour),
	}, Now)
	require.NoError(t, err)

	plan := committer.NewPlan()
	plan.Add(store.Discounts().InsertMut(d))
	require.NoError(t, store.Apply(context.Background(), plan), "failed to seed discount")
}

// Stock returns the committed stock level of a product.
func Stock(t *testing.T, store *memory.Store, productID string) int64 {
	t.Helper()

	p, err := store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity()
}

// AssertOutboxEvent verifies an outbox event exists with the given event type.
func AssertOutboxEvent(t *testing.T, rm contracts.ReadModel, eventType string) {
	t.Helper()

	events, err := rm.ListEvents(context.Background(), &contracts.EventFilter{EventType: eventType})
	require.NoError(t, err)
	require.NotEmpty(t, events, "outbox event not found for type: %s", eventType)
}

// AssertOutboxEventCount verifies the count of outbox events of a type.
func AssertOutboxEventCount(t *testing.T, rm contracts.ReadModel, eventType string, expectedCount int) {
	t.Helper()

	events, err := rm.ListEvents(context.Background(), &contracts.EventFilter{EventType: eventType})
	require.NoError(t, err)
	require.Len(t, events, expectedCount, "unexpected outbox event count for type: %s", eventType)
}
