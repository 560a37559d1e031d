package contracts

import (
	"context"
	"errors"
	"time"

	"github.com/light-bringer/pos-service/internal/app/pos/domain"
)

// SaleItemDTO is a sale line for display.
type SaleItemDTO struct {
	ItemID      string
	ProductID   string
	ProductName string
	Quantity    int64
	UnitPrice   *domain.Money
	LineTotal   *domain.Money
}

// PaymentDTO is a payment for display.
type PaymentDTO struct {
	PaymentID         string
	CheckoutRequestID string
	Status            string
	PhoneNumber       string
	Amount            *domain.Money
	ReceiptNumber     string
	ResultCode        *int64
	ResultDesc        string
	TransactionDate   *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SaleDTO is a sale with its items and payments.
type SaleDTO struct {
	SaleID         string
	SaleNumber     string
	Status         string
	PaymentMethod  string
	CustomerID     string
	CashierID      string
	DiscountID     string
	Subtotal       *domain.Money
	DiscountAmount *domain.Money
	TaxAmount      *domain.Money
	FinalAmount    *domain.Money
	AmountTendered *domain.Money
	ChangeDue      *domain.Money
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []*SaleItemDTO
	Payments       []*PaymentDTO
}

// PaymentStatusDTO answers a till polling for a mobile-money outcome.
type PaymentStatusDTO struct {
	CheckoutRequestID string
	Status            string
	ReceiptNumber     string
	ResultDesc        string
	Amount            *domain.Money
	SaleID            string
	SaleNumber        string
	SaleStatus        string
}

// ProductDTO is a catalog row for display.
type ProductDTO struct {
	ProductID     string
	Name          string
	SKU           string
	CategoryID    string
	Price         *domain.Money
	CostPrice     *domain.Money
	StockQuantity int64
	MinStockLevel int64
	IsActive      bool
	ProfitMargin  float64
}

// ErrInvalidPageToken is returned for page tokens this service did not issue.
var ErrInvalidPageToken = errors.New("invalid page token")

// LowStockFilter pages through active products at or below their minimum
// stock level. PageToken is opaque.
type LowStockFilter struct {
	CategoryID string
	PageSize   int
	PageToken  string
}

// LowStockResult is one page of low-stock products.
type LowStockResult struct {
	Products      []*ProductDTO
	NextPageToken string
	TotalCount    int64
}

// ProductFilter pages through the catalog. Search matches name or SKU,
// ignoring case. Inactive products are skipped unless IncludeInactive is set.
type ProductFilter struct {
	Search          string
	CategoryID      string
	InStockOnly     bool
	IncludeInactive bool
	PageSize        int
	PageToken       string
}

// ProductListResult is one page of products ordered by name.
type ProductListResult struct {
	Products      []*ProductDTO
	NextPageToken string
	TotalCount    int64
}

// SaleFilter pages through sale headers, newest first. From is inclusive and
// To exclusive; a zero bound is open.
type SaleFilter struct {
	From      time.Time
	To        time.Time
	PageSize  int
	PageToken string
}

// SaleListResult is one page of sales. Items and Payments are not loaded.
type SaleListResult struct {
	Sales         []*SaleDTO
	NextPageToken string
	TotalCount    int64
}

// EventFilter filters outbox events. Empty fields match everything.
type EventFilter struct {
	EventType   string
	AggregateID string
	Status      string
	Limit       int
}

// ReadModel serves queries without loading aggregates.
type ReadModel interface {
	GetSale(ctx context.Context, saleID string) (*SaleDTO, error)
	ListSales(ctx context.Context, filter *SaleFilter) (*SaleListResult, error)
	GetPaymentStatus(ctx context.Context, checkoutRequestID string) (*PaymentStatusDTO, error)
	GetProduct(ctx context.Context, productID string) (*ProductDTO, error)
	ListProducts(ctx context.Context, filter *ProductFilter) (*ProductListResult, error)
	ListLowStock(ctx context.Context, filter *LowStockFilter) (*LowStockResult, error)
	ListEvents(ctx context.Context, filter *EventFilter) ([]*OutboxEvent, error)
}
