// Package pos exposes the till, payment and catalog use cases over HTTP.
package pos

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/light-bringer/pos-service/internal/app/pos/queries/get_product"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/get_sale"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_events"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_low_stock"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_products"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/list_sales"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/payment_status"
	"github.com/light-bringer/pos-service/internal/app/pos/queries/quote_sale"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/adjust_stock"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/commit_sale"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_category"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_customer"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_discount"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/create_product"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/deactivate_product"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/reconcile_payment"
	"github.com/light-bringer/pos-service/internal/app/pos/usecases/update_price"
)

// Commands groups the write use cases.
type Commands struct {
	CommitSale        *commit_sale.Interactor
	ReconcilePayment  *reconcile_payment.Interactor
	CreateCategory    *create_category.Interactor
	CreateProduct     *create_product.Interactor
	UpdatePrice       *update_price.Interactor
	DeactivateProduct *deactivate_product.Interactor
	AdjustStock       *adjust_stock.Interactor
	CreateCustomer    *create_customer.Interactor
	CreateDiscount    *create_discount.Interactor
}

// Queries groups the read use cases.
type Queries struct {
	QuoteSale     *quote_sale.Query
	GetSale       *get_sale.Query
	ListSales     *list_sales.Query
	PaymentStatus *payment_status.Query
	GetProduct    *get_product.Query
	ListProducts  *list_products.Query
	ListLowStock  *list_low_stock.Query
	ListEvents    *list_events.Query
}

// Handler is a thin coordinator that decodes requests, delegates to use cases
// and queries, and maps results back to JSON.
type Handler struct {
	cmd    Commands
	query  Queries
	auth   Authenticator
	logger *slog.Logger
}

// NewHandler creates a new HTTP handler. A nil authenticator falls back to
// the X-Cashier-ID header.
func NewHandler(cmd Commands, query Queries, auth Authenticator, logger *slog.Logger) *Handler {
	if auth == nil {
		auth = HeaderAuthenticator{}
	}
	return &Handler{
		cmd:    cmd,
		query:  query,
		auth:   auth,
		logger: logger,
	}
}

// Routes registers the API under /api/v1.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		// The provider cannot authenticate as a cashier.
		r.Post("/payments/mpesa/callback", h.mpesaCallback)

		r.Group(func(r chi.Router) {
			r.Use(h.requireCashier)

			r.Post("/sales", h.commitSale)
			r.Get("/sales", h.listSales)
			r.Post("/sales/quote", h.quoteSale)
			r.Get("/sales/{saleID}", h.getSale)
			r.Get("/payments/{checkoutRequestID}/status", h.paymentStatus)

			r.Post("/categories", h.createCategory)
			r.Post("/products", h.createProduct)
			r.Get("/products", h.listProducts)
			r.Get("/products/low-stock", h.listLowStock)
			r.Get("/products/{productID}", h.getProduct)
			r.Put("/products/{productID}/price", h.updatePrice)
			r.Post("/products/{productID}/deactivate", h.deactivateProduct)
			r.Post("/products/{productID}/stock", h.adjustStock)
			r.Post("/customers", h.createCustomer)
			r.Post("/discounts", h.createDiscount)

			r.Get("/events", h.listEvents)
		})
	})
}
