package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
	"github.com/light-bringer/pos-service/internal/app/pos/domain"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/get_product"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/get_sale"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_events"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_low_stock"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_products"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_sales"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/payment_status"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/quote_sale"
	"github.com/light-bringer/pos-service/internal/app/pos/repo"
	"github.com/light-bringer/pos-service/internal/app/pos/repo/memory"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/adjust_stock"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/commit_sale"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_category"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_customer"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_discount"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_product"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/deactivate_product"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/reconcile_payment"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/update_price"
	"github.com/light-bringer/pos-service/internal/config"
	"github.com/light-bringer/pos-service/internal/gateway/mpesa"
	"github.com/light-bringer/pos-service/internal/pkg/clock"
	"github.com/light-bringer/pos-service/internal/pkg/committer"
	"github.com/light-bringer/pos-service/internal/transport/http/pos"
)

// Stores is one backing store seen through the repository contracts.
type Stores struct {
	Tx           contracts.Transactor
	Products     contracts.ProductRepository
	Categories   contracts.CategoryRepository
	Customers    contracts.CustomerRepository
	Discounts    contracts.DiscountRepository
	Inventory    contracts.InventoryRepository
	PriceHistory contracts.PriceHistoryRepository
	Sales        contracts.SaleRepository
	Payments     contracts.PaymentRepository
	Outbox       contracts.OutboxRepository
	ReadModel    contracts.ReadModel
}

// SpannerStores wires the Spanner repositories and committer.
func SpannerStores(client *spanner.Client, clk clock.Clock) Stores {
	return Stores{
		Tx:           committer.NewCommitter(client),
		Products:     repo.NewProductRepo(client),
		Categories:   repo.NewCategoryRepo(client),
		Customers:    repo.NewCustomerRepo(client),
		Discounts:    repo.NewDiscountRepo(client),
		Inventory:    repo.NewInventoryRepo(),
		PriceHistory: repo.NewPriceHistoryRepo(),
		Sales:        repo.NewSaleRepo(),
		Payments:     repo.NewPaymentRepo(),
		Outbox:       repo.NewOutboxRepo(client, clk),
		ReadModel:    repo.NewReadModel(client),
	}
}

// MemoryStores wires the in-memory store. Nothing survives a restart.
func MemoryStores(store *memory.Store) Stores {
	return Stores{
		Tx:           store,
		Products:     store.Products(),
		Categories:   store.Categories(),
		Customers:    store.Customers(),
		Discounts:    store.Discounts(),
		Inventory:    store.Inventory(),
		PriceHistory: store.PriceHistory(),
		Sales:        store.Sales(),
		Payments:     store.Payments(),
		Outbox:       store.Outbox(),
		ReadModel:    store.ReadModel(),
	}
}

// Settings are the business rules applied at the till.
type Settings struct {
	Pricing      *domain.PricingCalculator
	Underpayment domain.CashUnderpaymentPolicy
}

// NewHTTPHandler creates every use case and query over stores and returns
// the HTTP handler that serves them. A nil gateway disables mobile money.
func NewHTTPHandler(
	stores Stores,
	gateway contracts.PaymentGateway,
	settings Settings,
	clk clock.Clock,
	logger *slog.Logger,
) *pos.Handler {
	// 1. Create command use cases (write operations)
	commitSale := commit_sale.NewInteractor(
		commit_sale.Repositories{
			Products:  stores.Products,
			Customers: stores.Customers,
			Discounts: stores.Discounts,
			Sales:     stores.Sales,
			Payments:  stores.Payments,
			Inventory: stores.Inventory,
			Outbox:    stores.Outbox,
		},
		stores.Tx,
		gateway,
		settings.Pricing,
		settings.Underpayment,
		clk,
		logger,
	)
	reconcilePayment := reconcile_payment.NewInteractor(
		reconcile_payment.Repositories{
			Products:  stores.Products,
			Customers: stores.Customers,
			Sales:     stores.Sales,
			Payments:  stores.Payments,
			Inventory: stores.Inventory,
			Outbox:    stores.Outbox,
		},
		stores.Tx,
		clk,
		logger,
	)

	cmd := pos.Commands{
		CommitSale:        commitSale,
		ReconcilePayment:  reconcilePayment,
		CreateCategory:    create_category.NewInteractor(stores.Categories, stores.Outbox, stores.Tx, clk),
		CreateProduct:     create_product.NewInteractor(stores.Products, stores.Categories, stores.Inventory, stores.Outbox, stores.Tx, clk),
		UpdatePrice:       update_price.NewInteractor(stores.Products, stores.Outbox, stores.PriceHistory, stores.Tx, clk),
		DeactivateProduct: deactivate_product.NewInteractor(stores.Products, stores.Outbox, stores.Tx, clk),
		AdjustStock:       adjust_stock.NewInteractor(stores.Products, stores.Inventory, stores.Outbox, stores.Tx, clk),
		CreateCustomer:    create_customer.NewInteractor(stores.Customers, stores.Outbox, stores.Tx, clk),
		CreateDiscount:    create_discount.NewInteractor(stores.Discounts, stores.Outbox, stores.Tx, clk),
	}

	// 2. Create query use cases (read operations)
	query := pos.Queries{
		QuoteSale:     quote_sale.NewQuery(stores.Products, stores.Discounts, settings.Pricing, clk),
		GetSale:       get_sale.NewQuery(stores.ReadModel),
		ListSales:     list_sales.NewQuery(stores.ReadModel),
		PaymentStatus: payment_status.NewQuery(stores.ReadModel),
		GetProduct:    get_product.NewQuery(stores.ReadModel),
		ListProducts:  list_products.NewQuery(stores.ReadModel),
		ListLowStock:  list_low_stock.NewQuery(stores.ReadModel),
		ListEvents:    list_events.NewQuery(stores.ReadModel),
	}

	// 3. Create HTTP handler
	return pos.NewHandler(cmd, query, pos.HeaderAuthenticator{}, logger)
}

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	SpannerClient *spanner.Client
	HTTPHandler   *pos.Handler
}

// NewServiceOptions creates and wires up all application dependencies from
// the loaded configuration.
func NewServiceOptions(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ServiceOptions, error) {
	clk := clock.NewRealClock()
	opts := &ServiceOptions{}

	// 1. Initialize the store
	var stores Stores
	switch cfg.Store.Driver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		stores = MemoryStores(memory.NewStore(clk))
	default:
		client, err := spanner.NewClient(ctx, cfg.Store.SpannerDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to create Spanner client: %w", err)
		}
		opts.SpannerClient = client
		stores = SpannerStores(client, clk)
	}

	// 2. Business rules
	settings, err := NewSettings(cfg.POS)
	if err != nil {
		opts.Close()
		return nil, err
	}

	// 3. Payment gateway
	gateway, err := NewGateway(cfg.MPesa, clk, logger)
	if err != nil {
		opts.Close()
		return nil, err
	}

	opts.HTTPHandler = NewHTTPHandler(stores, gateway, settings, clk, logger)
	return opts, nil
}

// NewSettings parses the till rules from configuration.
func NewSettings(cfg config.POSConfig) (Settings, error) {
	rate, err := cfg.TaxRateRat()
	if err != nil {
		return Settings{}, err
	}
	policy := domain.UnderpaymentAllow
	if cfg.CashUnderpayment == string(domain.UnderpaymentReject) {
		policy = domain.UnderpaymentReject
	}
	return Settings{
		Pricing:      domain.NewPricingCalculator(rate),
		Underpayment: policy,
	}, nil
}

// NewGateway builds the Daraja client, or returns a nil gateway when M-Pesa
// is disabled.
func NewGateway(cfg config.MPesaConfig, clk clock.Clock, logger *slog.Logger) (contracts.PaymentGateway, error) {
	if !cfg.Enabled {
		logger.Info("mpesa disabled; mobile money sales will be refused")
		return nil, nil
	}
	client, err := mpesa.NewClient(mpesa.Config{
		BaseURL:         cfg.ResolvedBaseURL(),
		ConsumerKey:     cfg.ConsumerKey,
		ConsumerSecret:  cfg.ConsumerSecret,
		ShortCode:       cfg.ShortCode,
		PassKey:         cfg.PassKey,
		CallbackURL:     cfg.CallbackURL,
		TransactionType: cfg.TransactionType,
		Timeout:         cfg.Timeout,
	}, clk, mpesa.WithLogger(logger.With("component", "mpesa")))
	if err != nil {
		return nil, fmt.Errorf("failed to create mpesa client: %w", err)
	}
	return client, nil
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
