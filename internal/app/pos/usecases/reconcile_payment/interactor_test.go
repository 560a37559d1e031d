package reconcile_payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/repo/memory"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/commit_sale"
	"github.com/light-bringer/pos-service/internal/pkg/logging"
	"github.com/light-bringer/pos-service/internal/testutil"
)

type fixture struct {
	store     *memory.Store
	commit    *commit_sale.Interactor
	reconcile *Interactor
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store := testutil.NewStore(t)
	testutil.SeedProducts(t, store, testutil.NewProductBuilder("soap").WithPrice(100).WithStock(10))
	testutil.SeedCustomer(t, store, "cust-1")

	commit := commit_sale.NewInteractor(
		commit_sale.Repositories{
			Products:  store.Products(),
			Customers: store.Customers(),
			Discounts: store.Discounts(),
			Sales:     store.Sales(),
			Payments:  store.Payments(),
			Inventory: store.Inventory(),
			Outbox:    store.Outbox(),
		},
		store,
		&testutil.FakeGateway{},
		domain.NewPricingCalculator(nil),
		domain.UnderpaymentAllow,
		testutil.NewMockClock(),
		logging.Discard(),
	)
	reconcile := NewInteractor(
		Repositories{
			Products:  store.Products(),
			Customers: store.Customers(),
			Sales:     store.Sales(),
			Payments:  store.Payments(),
			Inventory: store.Inventory(),
			Outbox:    store.Outbox(),
		},
		store,
		testutil.NewMockClock(),
		logging.Discard(),
	)
	return &fixture{store: store, commit: commit, reconcile: reconcile}
}

func (f *fixture) pendingSale(t *testing.T, qty int64) *commit_sale.Result {
	t.Helper()

	result, err := f.commit.Execute(context.Background(), &commit_sale.Request{
		Lines:         []commit_sale.Line{{ProductID: "soap", Quantity: qty}},
		CustomerID:    "cust-1",
		CashierID:     "cashier-1",
		PaymentMethod: domain.PaymentMobileMoney,
		PhoneNumber:   "0712345678",
	})
	require.NoError(t, err)
	require.Equal(t, domain.SaleStatusPending, result.Status)
	return result
}

func success(checkoutID string, amount int64) *Request {
	paidAt := time.Date(2026, 3, 14, 9, 31, 0, 0, time.UTC)
	return &Request{
		CheckoutRequestID: checkoutID,
		ResultCode:        0,
		ResultDesc:        "The service request is processed successfully.",
		Amount:            domain.FromUnits(amount),
		ReceiptNumber:     "NLJ7RT61SV",
		PhoneNumber:       "254712345678",
		TransactionDate:   &paidAt,
		RawPayload:        `{"Body":{}}`,
	}
}

func TestReconcilePayment_SuccessCompletesSale(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	sale := f.pendingSale(t, 3)

	result, err := f.reconcile.Execute(ctx, success(sale.CheckoutRequestID, 300))
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Equal(t, domain.PaymentStatusSuccess, result.PaymentStatus)
	assert.Equal(t, domain.SaleStatusCompleted, result.SaleStatus)
	assert.Zero(t, result.OversoldUnits)

	assert.Equal(t, int64(7), testutil.Stock(t, f.store, "soap"))
	ledger := f.store.InventoryFor("soap")
	require.Len(t, ledger, 1)
	assert.Equal(t, int64(-3), ledger[0].Quantity)

	customer, err := f.store.Customers().GetByID(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, int64(30), customer.LoyaltyPoints())

	status, err := f.store.ReadModel().GetPaymentStatus(ctx, sale.CheckoutRequestID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentStatusSuccess), status.Status)
	assert.Equal(t, "NLJ7RT61SV", status.ReceiptNumber)
	assert.Equal(t, string(domain.SaleStatusCompleted), status.SaleStatus)

	rm := f.store.ReadModel()
	testutil.AssertOutboxEvent(t, rm, "payment.succeeded")
	testutil.AssertOutboxEvent(t, rm, "sale.completed")
	testutil.AssertOutboxEvent(t, rm, "customer.loyalty_accrued")
}

func TestReconcilePayment_DuplicateIsNoop(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	sale := f.pendingSale(t, 2)

	_, err := f.reconcile.Execute(ctx, success(sale.CheckoutRequestID, 200))
	require.NoError(t, err)

	result, err := f.reconcile.Execute(ctx, success(sale.CheckoutRequestID, 200))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, result.Outcome)
	assert.Equal(t, domain.PaymentStatusSuccess, result.PaymentStatus)

	// A late failure for the same checkout must not undo the success.
	result, err = f.reconcile.Execute(ctx, &Request{CheckoutRequestID: sale.CheckoutRequestID, ResultCode: 1, ResultDesc: "late"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, result.Outcome)

	assert.Equal(t, int64(8), testutil.Stock(t, f.store, "soap"), "stock taken exactly once")
	assert.Len(t, f.store.InventoryFor("soap"), 1)
	testutil.AssertOutboxEventCount(t, f.store.ReadModel(), "sale.completed", 1)
}

func TestReconcilePayment_FailureCancelsSale(t *testing.T) {
	tests := []struct {
		name       string
		resultCode int64
		wantStatus domain.PaymentStatus
	}{
		{"cancelled by user", domain.ResultCodeCancelledByUser, domain.PaymentStatusCancelled},
		{"insufficient balance", 1, domain.PaymentStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := setup(t)
			sale := f.pendingSale(t, 2)

			result, err := f.reconcile.Execute(ctx, &Request{
				CheckoutRequestID: sale.CheckoutRequestID,
				ResultCode:        tt.resultCode,
				ResultDesc:        "Request cancelled by user",
			})
			require.NoError(t, err)

			assert.Equal(t, OutcomeApplied, result.Outcome)
			assert.Equal(t, tt.wantStatus, result.PaymentStatus)
			assert.Equal(t, domain.SaleStatusCancelled, result.SaleStatus)

			assert.Equal(t, int64(10), testutil.Stock(t, f.store, "soap"), "inventory untouched")
			assert.Empty(t, f.store.InventoryFor("soap"))

			customer, err := f.store.Customers().GetByID(ctx, "cust-1")
			require.NoError(t, err)
			assert.Zero(t, customer.LoyaltyPoints())

			testutil.AssertOutboxEvent(t, f.store.ReadModel(), "payment.failed")
			testutil.AssertOutboxEvent(t, f.store.ReadModel(), "sale.cancelled")
		})
	}
}

func TestReconcilePayment_UnknownCheckout(t *testing.T) {
	f := setup(t)

	result, err := f.reconcile.Execute(context.Background(), success("ws_CO_missing", 100))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknown, result.Outcome)
	testutil.AssertOutboxEventCount(t, f.store.ReadModel(), "payment.succeeded", 0)
}

func TestReconcilePayment_OversoldStockIsClamped(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	sale := f.pendingSale(t, 4)

	// A cash sale takes most of the stock while the customer approves.
	_, err := f.commit.Execute(ctx, &commit_sale.Request{
		Lines:         []commit_sale.Line{{ProductID: "soap", Quantity: 8}},
		CashierID:     "cashier-2",
		PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)

	result, err := f.reconcile.Execute(ctx, success(sale.CheckoutRequestID, 400))
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusSuccess, result.PaymentStatus)
	assert.Equal(t, domain.SaleStatusCompleted, result.SaleStatus)
	assert.Equal(t, int64(2), result.OversoldUnits)
	assert.Equal(t, int64(0), testutil.Stock(t, f.store, "soap"))

	ledger := f.store.InventoryFor("soap")
	require.Len(t, ledger, 2)
	assert.Equal(t, int64(-2), ledger[1].Quantity)
	assert.Contains(t, ledger[1].Notes, "oversold by 2")

	testutil.AssertOutboxEvent(t, f.store.ReadModel(), "product.oversold")
}
