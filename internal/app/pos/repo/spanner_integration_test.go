//go:build integration

package repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/commit_sale"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_product"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/reconcile_payment"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/relay_outbox"
	"github.com/light-bringer/pos-service/internal/models/m_inventory_tx"
	"github.com/light-bringer/pos-service/internal/models/m_outbox"
	"github.com/light-bringer/pos-service/internal/models/m_sale_item"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
	"github.com/light-bringer/pos-service/internal/pkg/logging"
	"github.com/light-bringer/pos-service/internal/services"
	"github.com/light-bringer/pos-service/internal/testutil"
)

type spannerFixture struct {
	client    *spanner.Client
	stores    services.Stores
	gateway   *testutil.FakeGateway
	commit    *commit_sale.Interactor
	reconcile *reconcile_payment.Interactor
}

func setupSpanner(t *testing.T) *spannerFixture {
	t.Helper()

	client := testutil.SetupSpannerTest(t)
	clk := testutil.NewMockClock()
	stores := services.SpannerStores(client, clk)
	ctx := context.Background()

	category, err := domain.NewCategory(testutil.CategoryID, "Beverages", "", testutil.Now)
	require.NoError(t, err)
	soap, err := testutil.NewProductBuilder("soap").WithPrice(100).WithStock(10).Build()
	require.NoError(t, err)
	bread, err := testutil.NewProductBuilder("bread").WithPrice(60).WithStock(3).WithMinStock(5).Build()
	require.NoError(t, err)
	customer, err := domain.NewCustomer("cust-1", domain.CustomerParams{Name: "Amina"}, testutil.Now)
	require.NoError(t, err)

	plan := committer.NewPlan()
	plan.Add(stores.Categories.InsertMut(category))
	plan.Add(stores.Products.InsertMut(soap))
	plan.Add(stores.Products.InsertMut(bread))
	plan.Add(stores.Customers.InsertMut(customer))
	require.NoError(t, stores.Tx.Apply(ctx, plan))

	gateway := &testutil.FakeGateway{}
	logger := logging.Discard()
	return &spannerFixture{
		client:  client,
		stores:  stores,
		gateway: gateway,
		commit: commit_sale.NewInteractor(
			commit_sale.Repositories{
				Products:  stores.Products,
				Customers: stores.Customers,
				Discounts: stores.Discounts,
				Sales:     stores.Sales,
				Payments:  stores.Payments,
				Inventory: stores.Inventory,
				Outbox:    stores.Outbox,
			},
			stores.Tx, gateway, domain.NewPricingCalculator(nil), domain.UnderpaymentAllow, clk, logger,
		),
		reconcile: reconcile_payment.NewInteractor(
			reconcile_payment.Repositories{
				Products:  stores.Products,
				Customers: stores.Customers,
				Sales:     stores.Sales,
				Payments:  stores.Payments,
				Inventory: stores.Inventory,
				Outbox:    stores.Outbox,
			},
			stores.Tx, clk, logger,
		),
	}
}

func (f *spannerFixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := f.stores.Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity()
}

func TestSpanner_CashSale(t *testing.T) {
	f := setupSpanner(t)
	ctx := context.Background()

	result, err := f.commit.Execute(ctx, &commit_sale.Request{
		Lines:          []commit_sale.Line{{ProductID: "soap", Quantity: 2}, {ProductID: "bread", Quantity: 1}},
		CustomerID:     "cust-1",
		CashierID:      "cashier-1",
		PaymentMethod:  domain.PaymentCash,
		AmountTendered: domain.FromUnits(300),
	})
	require.NoError(t, err)

	assert.Equal(t, "S202603140001", result.SaleNumber)
	assert.Equal(t, "260.00", result.FinalAmount.String())
	assert.Equal(t, "40.00", result.Change.String())
	assert.Equal(t, int64(8), f.stock(t, "soap"))
	assert.Equal(t, int64(2), f.stock(t, "bread"))

	sale, err := f.stores.ReadModel.GetSale(ctx, result.SaleID)
	require.NoError(t, err)
	assert.Equal(t, "completed", sale.Status)
	assert.Len(t, sale.Items, 2)

	customer, err := f.stores.Customers.GetByID(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, result.PointsEarned, customer.LoyaltyPoints())

	events, err := f.stores.ReadModel.ListEvents(ctx, &contracts.EventFilter{EventType: "sale.completed"})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSpanner_SaleNumbersAreSequentialUnderContention(t *testing.T) {
	f := setupSpanner(t)
	ctx := context.Background()

	const sales = 5
	numbers := make(chan string, sales)
	var wg sync.WaitGroup
	for i := 0; i < sales; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.commit.Execute(ctx, &commit_sale.Request{
				Lines:         []commit_sale.Line{{ProductID: "soap", Quantity: 1}},
				CashierID:     "cashier-1",
				PaymentMethod: domain.PaymentCard,
			})
			if err == nil {
				numbers <- res.SaleNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for n := range numbers {
		assert.False(t, seen[n], "duplicate sale number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, sales)
	assert.Equal(t, int64(10-sales), f.stock(t, "soap"))
}

func TestSpanner_MobileMoneyReconciledOnce(t *testing.T) {
	f := setupSpanner(t)
	ctx := context.Background()

	sale, err := f.commit.Execute(ctx, &commit_sale.Request{
		Lines:         []commit_sale.Line{{ProductID: "soap", Quantity: 3}},
		CustomerID:    "cust-1",
		CashierID:     "cashier-1",
		PaymentMethod: domain.PaymentMobileMoney,
		PhoneNumber:   "0712345678",
	})
	require.NoError(t, err)
	require.Equal(t, domain.SaleStatusPending, sale.Status)
	assert.Equal(t, 1, f.gateway.Calls())
	assert.Equal(t, int64(10), f.stock(t, "soap"))

	paidAt := testutil.Now.Add(time.Minute)
	req := &reconcile_payment.Request{
		CheckoutRequestID: sale.CheckoutRequestID,
		ResultCode:        0,
		ResultDesc:        "The service request is processed successfully.",
		Amount:            domain.FromUnits(300),
		ReceiptNumber:     "NLJ7RT61SV",
		PhoneNumber:       "254712345678",
		TransactionDate:   &paidAt,
		RawPayload:        `{"Body":{}}`,
	}

	first, err := f.reconcile.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, reconcile_payment.OutcomeApplied, first.Outcome)

	second, err := f.reconcile.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, reconcile_payment.OutcomeDuplicate, second.Outcome)

	assert.Equal(t, int64(7), f.stock(t, "soap"))

	status, err := f.stores.ReadModel.GetPaymentStatus(ctx, sale.CheckoutRequestID)
	require.NoError(t, err)
	assert.Equal(t, "success", status.Status)
	assert.Equal(t, "NLJ7RT61SV", status.ReceiptNumber)
	assert.Equal(t, "completed", status.SaleStatus)
}

func TestSpanner_DuplicateSKU(t *testing.T) {
	f := setupSpanner(t)

	create := create_product.NewInteractor(
		f.stores.Products, f.stores.Categories, f.stores.Inventory, f.stores.Outbox, f.stores.Tx, testutil.NewMockClock(),
	)
	_, err := create.Execute(context.Background(), &create_product.Request{
		Name:       "Soap again",
		CategoryID: testutil.CategoryID,
		SKU:        "SKU-soap",
		Price:      domain.FromUnits(90),
		CreatedBy:  "cashier-1",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestSpanner_LowStockPaging(t *testing.T) {
	f := setupSpanner(t)
	ctx := context.Background()

	page, err := f.stores.ReadModel.ListLowStock(ctx, &contracts.LowStockFilter{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "bread", page.Products[0].ProductID)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Empty(t, page.NextPageToken)
}

func TestSpanner_ProductSearchAndSalesHistory(t *testing.T) {
	f := setupSpanner(t)
	ctx := context.Background()

	found, err := f.stores.ReadModel.ListProducts(ctx, &contracts.ProductFilter{Search: "sku-SO", InStockOnly: true, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, found.Products, 1)
	assert.Equal(t, "soap", found.Products[0].ProductID)

	product, err := f.stores.ReadModel.GetProduct(ctx, "bread")
	require.NoError(t, err)
	assert.Equal(t, int64(3), product.StockQuantity)

	_, err = f.stores.ReadModel.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	for i := 0; i < 2; i++ {
		_, err := f.commit.Execute(ctx, &commit_sale.Request{
			Lines:         []commit_sale.Line{{ProductID: "soap", Quantity: 1}},
			CashierID:     "cashier-1",
			PaymentMethod: domain.PaymentCard,
		})
		require.NoError(t, err)
	}

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	sales, err := f.stores.ReadModel.ListSales(ctx, &contracts.SaleFilter{From: day, To: day.Add(24 * time.Hour), PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sales.TotalCount)
	require.Len(t, sales.Sales, 1)
	assert.Equal(t, "S202603140002", sales.Sales[0].SaleNumber)
	assert.NotEmpty(t, sales.NextPageToken)
}

type recordingPublisher struct {
	events []*contracts.OutboxEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *contracts.OutboxEvent) error {
	p.events = append(p.events, event)
	return nil
}

func TestSpanner_OutboxRelayAndPrune(t *testing.T) {
	f := setupSpanner(t)
	ctx := context.Background()
	clk := testutil.NewMockClock()

	_, err := f.commit.Execute(ctx, &commit_sale.Request{
		Lines:         []commit_sale.Line{{ProductID: "bread", Quantity: 1}},
		CashierID:     "cashier-1",
		PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	relay := relay_outbox.NewInteractor(f.stores.Outbox, publisher, f.stores.Tx, 0, clk, logging.Discard())

	res, err := relay.Execute(ctx, 100)
	require.NoError(t, err)
	assert.Positive(t, res.Published)
	assert.Zero(t, res.Failed)

	pending, err := f.stores.ReadModel.ListEvents(ctx, &contracts.EventFilter{Status: m_outbox.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, pending)

	clk.Advance(48 * time.Hour)
	deleted, err := relay.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(res.Published), deleted)
}

func TestSpanner_SaleLedgerRows(t *testing.T) {
	f := setupSpanner(t)
	ctx := context.Background()

	_, err := f.commit.Execute(ctx, &commit_sale.Request{
		Lines:         []commit_sale.Line{{ProductID: "soap", Quantity: 4}},
		CashierID:     "cashier-1",
		PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)

	testutil.AssertRowCount(t, f.client, m_inventory_tx.TableName, 1)
	testutil.AssertRowCount(t, f.client, m_sale_item.TableName, 1)
}
