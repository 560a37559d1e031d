package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/models/m_outbox"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(clock.NewMockClock(testNow))

	category, err := domain.NewCategory("cat-1", "Beverages", "", testNow)
	require.NoError(t, err)
	plan := committer.NewPlan()
	plan.Add(store.Categories().InsertMut(category))
	require.NoError(t, store.Apply(context.Background(), plan))
	return store
}

func newProduct(t *testing.T, id, sku string, stock int64) *domain.Product {
	t.Helper()
	minStock := int64(5)
	p, err := domain.NewProduct(id, domain.ProductParams{
		Name:          "Product " + id,
		CategoryID:    "cat-1",
		SKU:           sku,
		Price:         domain.FromUnits(100),
		CostPrice:     domain.FromUnits(60),
		StockQuantity: stock,
		MinStockLevel: &minStock,
	}, testNow)
	require.NoError(t, err)
	return p
}

func insertProducts(t *testing.T, store *Store, products ...*domain.Product) {
	t.Helper()
	plan := committer.NewPlan()
	for _, p := range products {
		plan.Add(store.Products().InsertMut(p))
	}
	require.NoError(t, store.Apply(context.Background(), plan))
}

func TestStore_ApplyIsAtomic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertProducts(t, store, newProduct(t, "p-1", "SKU-1", 10))

	plan := committer.NewPlan()
	plan.Add(store.Products().InsertMut(newProduct(t, "p-2", "SKU-2", 10)))
	plan.Add(store.Products().InsertMut(newProduct(t, "p-3", "sku-1", 10))) // duplicate SKU

	err := store.Apply(ctx, plan)
	require.Error(t, err)

	_, err = store.Products().GetByID(ctx, "p-2")
	assert.ErrorIs(t, err, domain.ErrProductNotFound, "first insert must be rolled back")
}

func TestStore_RejectsForeignMutations(t *testing.T) {
	store := newTestStore(t)

	plan := committer.NewPlan()
	plan.Add(spanner.Insert("products", []string{"product_id"}, []interface{}{"p-x"}))

	err := store.Apply(context.Background(), plan)
	assert.ErrorIs(t, err, ErrUnknownMutation)
}

func TestStore_ReadWriteDiscardsOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertProducts(t, store, newProduct(t, "p-1", "SKU-1", 10))

	boom := errors.New("boom")
	err := store.ReadWrite(ctx, func(ctx context.Context, tx committer.Txn) error {
		p, err := store.Products().GetByIDTx(ctx, tx, "p-1")
		require.NoError(t, err)
		require.NoError(t, p.DeductStock(4, testNow))

		plan := committer.NewPlan()
		plan.Add(store.Products().UpdateMut(p))
		require.NoError(t, plan.BufferOn(tx))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := store.Products().GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.StockQuantity())
}

func TestStore_ReadWriteCommitsBufferedPlan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertProducts(t, store, newProduct(t, "p-1", "SKU-1", 10))

	err := store.ReadWrite(ctx, func(ctx context.Context, tx committer.Txn) error {
		p, err := store.Products().GetByIDTx(ctx, tx, "p-1")
		if err != nil {
			return err
		}
		if err := p.DeductStock(4, testNow); err != nil {
			return err
		}
		plan := committer.NewPlan()
		plan.Add(store.Products().UpdateMut(p))
		return plan.BufferOn(tx)
	})
	require.NoError(t, err)

	p, err := store.Products().GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.StockQuantity())
}

func TestStore_ForeignTxnRejected(t *testing.T) {
	store := newTestStore(t)
	other := NewStore(clock.NewMockClock(testNow))

	err := other.ReadWrite(context.Background(), func(ctx context.Context, tx committer.Txn) error {
		_, err := store.Products().GetByIDTx(ctx, tx, "p-1")
		return err
	})
	assert.ErrorIs(t, err, committer.ErrForeignTxn)
}

func TestSaleRepo_NextNumberPerDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	next := func(now time.Time) string {
		var number string
		err := store.ReadWrite(ctx, func(ctx context.Context, tx committer.Txn) error {
			n, mut, err := store.Sales().NextNumberTx(ctx, tx, now)
			if err != nil {
				return err
			}
			number = n
			return tx.BufferWrite([]*spanner.Mutation{mut})
		})
		require.NoError(t, err)
		return number
	}

	assert.Equal(t, "S202603140001", next(testNow))
	assert.Equal(t, "S202603140002", next(testNow.Add(time.Hour)))
	assert.Equal(t, "S202603150001", next(testNow.Add(24*time.Hour)))
}

func TestReadModel_ListLowStockPages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertProducts(t, store,
		newProduct(t, "p-1", "SKU-1", 3),
		newProduct(t, "p-2", "SKU-2", 0),
		newProduct(t, "p-3", "SKU-3", 5),
		newProduct(t, "p-4", "SKU-4", 50),
	)

	rm := store.ReadModel()
	first, err := rm.ListLowStock(ctx, &contracts.LowStockFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.TotalCount)
	require.Len(t, first.Products, 2)
	assert.Equal(t, "p-2", first.Products[0].ProductID)
	assert.Equal(t, "p-1", first.Products[1].ProductID)
	require.NotEmpty(t, first.NextPageToken)

	second, err := rm.ListLowStock(ctx, &contracts.LowStockFilter{PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Equal(t, "p-3", second.Products[0].ProductID)
	assert.Empty(t, second.NextPageToken)

	_, err = rm.ListLowStock(ctx, &contracts.LowStockFilter{PageToken: "%%%"})
	assert.ErrorIs(t, err, contracts.ErrInvalidPageToken)
}

func TestReadModel_ListProductsFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertProducts(t, store,
		newProduct(t, "p-1", "SOAP-01", 3),
		newProduct(t, "p-2", "SOAP-02", 0),
		newProduct(t, "p-3", "MILK-01", 9),
	)
	rm := store.ReadModel()

	all, err := rm.ListProducts(ctx, &contracts.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)

	soap, err := rm.ListProducts(ctx, &contracts.ProductFilter{Search: "soap"})
	require.NoError(t, err)
	require.Len(t, soap.Products, 2)
	assert.Equal(t, "p-1", soap.Products[0].ProductID)
	assert.Equal(t, "p-2", soap.Products[1].ProductID)

	inStock, err := rm.ListProducts(ctx, &contracts.ProductFilter{Search: "soap", InStockOnly: true})
	require.NoError(t, err)
	require.Len(t, inStock.Products, 1)
	assert.Equal(t, "p-1", inStock.Products[0].ProductID)

	byName, err := rm.ListProducts(ctx, &contracts.ProductFilter{Search: "PRODUCT P-3"})
	require.NoError(t, err)
	require.Len(t, byName.Products, 1)
	assert.Equal(t, "p-3", byName.Products[0].ProductID)

	other, err := rm.ListProducts(ctx, &contracts.ProductFilter{CategoryID: "cat-2"})
	require.NoError(t, err)
	assert.Empty(t, other.Products)
	assert.Zero(t, other.TotalCount)
}

func TestReadModel_ListProductsHidesInactive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	retired := newProduct(t, "p-2", "SKU-2", 4)
	require.NoError(t, retired.Deactivate(testNow))
	insertProducts(t, store, newProduct(t, "p-1", "SKU-1", 4), retired)
	rm := store.ReadModel()

	active, err := rm.ListProducts(ctx, &contracts.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, active.Products, 1)
	assert.Equal(t, "p-1", active.Products[0].ProductID)

	everything, err := rm.ListProducts(ctx, &contracts.ProductFilter{IncludeInactive: true, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), everything.TotalCount)
	require.Len(t, everything.Products, 1)
	require.NotEmpty(t, everything.NextPageToken)

	dto, err := rm.GetProduct(ctx, "p-2")
	require.NoError(t, err)
	assert.False(t, dto.IsActive)

	_, err = rm.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func insertSale(t *testing.T, store *Store, id, number string, at time.Time) {
	t.Helper()
	item, err := domain.NewSaleItem(id+"-item", id, "p-1", "Product p-1", 1, domain.FromUnits(100))
	require.NoError(t, err)
	sale, err := domain.NewSale(domain.SaleParams{
		ID:             id,
		Number:         number,
		CashierID:      "cashier-1",
		Items:          []*domain.SaleItem{item},
		Subtotal:       domain.FromUnits(100),
		DiscountAmount: domain.Zero(),
		TaxAmount:      domain.Zero(),
		FinalAmount:    domain.FromUnits(100),
		PaymentMethod:  domain.PaymentCash,
		AmountTendered: domain.FromUnits(100),
		ChangeDue:      domain.Zero(),
	}, at)
	require.NoError(t, err)
	plan := committer.NewPlan()
	plan.AddMultiple(store.Sales().InsertMuts(sale))
	require.NoError(t, store.Apply(context.Background(), plan))
}

func TestReadModel_ListSalesByDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	insertSale(t, store, "s-1", "S202603130001", day.Add(-time.Hour))
	insertSale(t, store, "s-2", "S202603140001", day)
	insertSale(t, store, "s-3", "S202603140002", day.Add(23*time.Hour))
	insertSale(t, store, "s-4", "S202603150001", day.Add(24*time.Hour))
	rm := store.ReadModel()

	all, err := rm.ListSales(ctx, &contracts.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, all.Sales, 4)
	assert.Equal(t, "s-4", all.Sales[0].SaleID)
	assert.Equal(t, "s-1", all.Sales[3].SaleID)

	oneDay, err := rm.ListSales(ctx, &contracts.SaleFilter{From: day, To: day.Add(24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, oneDay.Sales, 2)
	assert.Equal(t, "S202603140002", oneDay.Sales[0].SaleNumber)
	assert.Equal(t, "S202603140001", oneDay.Sales[1].SaleNumber)
	assert.Empty(t, oneDay.Sales[0].Items)

	paged, err := rm.ListSales(ctx, &contracts.SaleFilter{From: day, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), paged.TotalCount)
	require.Len(t, paged.Sales, 2)
	rest, err := rm.ListSales(ctx, &contracts.SaleFilter{From: day, PageSize: 2, PageToken: paged.NextPageToken})
	require.NoError(t, err)
	require.Len(t, rest.Sales, 1)
	assert.Equal(t, "s-2", rest.Sales[0].SaleID)
	assert.Empty(t, rest.NextPageToken)
}

func TestOutbox_RelayLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	outbox := store.Outbox()

	plan := committer.NewPlan()
	first := outbox.EnrichEvent(&domain.CategoryCreatedEvent{CategoryID: "cat-2"}, `{"category_id":"cat-2"}`)
	second := outbox.EnrichEvent(&domain.CategoryCreatedEvent{CategoryID: "cat-3"}, `{"category_id":"cat-3"}`)
	plan.Add(outbox.InsertMut(first))
	plan.Add(outbox.InsertMut(second))
	require.NoError(t, store.Apply(ctx, plan))

	pending, err := outbox.ListPending(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.EventID, pending[0].EventID)
	assert.JSONEq(t, `{"category_id":"cat-2"}`, pending[0].Payload)

	processedAt := testNow.Add(time.Minute)
	plan = committer.NewPlan()
	plan.Add(outbox.MarkMut(pending[0], nil, processedAt))
	plan.Add(outbox.MarkMut(pending[1], errors.New("broker down"), processedAt))
	require.NoError(t, store.Apply(ctx, plan))

	pending, err = outbox.ListPending(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, m_outbox.StatusFailed, pending[0].Status)
	assert.Equal(t, int64(1), pending[0].RetryCount)
	assert.Equal(t, "broker down", pending[0].ErrorMessage)

	pending, err = outbox.ListPending(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "events out of retries are not relayed")

	deleted, err := outbox.DeleteProcessedBefore(ctx, processedAt.Add(time.Second), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted, "only the completed event is pruned")

	events, err := store.ReadModel().ListEvents(ctx, &contracts.EventFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, second.EventID, events[0].EventID)
}
