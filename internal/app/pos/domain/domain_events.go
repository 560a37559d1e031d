package domain

import "time"

// DomainEvent is recorded by aggregates and written to the outbox in the same
// commit as the change it describes.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// events is embedded by aggregates that record domain events.
type events struct {
	recorded []DomainEvent
}

func (e *events) record(event DomainEvent) {
	e.recorded = append(e.recorded, event)
}

// DomainEvents returns the events recorded since the aggregate was loaded.
func (e *events) DomainEvents() []DomainEvent { return e.recorded }

// ClearEvents drops recorded events. Use cases defer it so a retried
// transaction does not publish twice.
func (e *events) ClearEvents() { e.recorded = nil }

// SaleCompletedEvent is emitted when a sale is paid in full, either at the
// till or on mobile-money confirmation.
type SaleCompletedEvent struct {
	SaleID        string        `json:"sale_id"`
	SaleNumber    string        `json:"sale_number"`
	CustomerID    string        `json:"customer_id,omitempty"`
	CashierID     string        `json:"cashier_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	FinalAmount   *Money        `json:"final_amount"`
	CompletedAt   time.Time     `json:"completed_at"`
}

func (e *SaleCompletedEvent) EventType() string   { return "sale.completed" }
func (e *SaleCompletedEvent) AggregateID() string { return e.SaleID }

// SalePendingEvent is emitted when a sale waits for a mobile-money callback.
type SalePendingEvent struct {
	SaleID      string    `json:"sale_id"`
	SaleNumber  string    `json:"sale_number"`
	FinalAmount *Money    `json:"final_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *SalePendingEvent) EventType() string   { return "sale.pending" }
func (e *SalePendingEvent) AggregateID() string { return e.SaleID }

// SaleCancelledEvent is emitted when a pending sale's payment fails.
type SaleCancelledEvent struct {
	SaleID      string    `json:"sale_id"`
	SaleNumber  string    `json:"sale_number"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func (e *SaleCancelledEvent) EventType() string   { return "sale.cancelled" }
func (e *SaleCancelledEvent) AggregateID() string { return e.SaleID }

// PaymentInitiatedEvent is emitted when an STK push was accepted.
type PaymentInitiatedEvent struct {
	PaymentID         string    `json:"payment_id"`
	SaleID            string    `json:"sale_id"`
	CheckoutRequestID string    `json:"checkout_request_id"`
	Amount            *Money    `json:"amount"`
	InitiatedAt       time.Time `json:"initiated_at"`
}

func (e *PaymentInitiatedEvent) EventType() string   { return "payment.initiated" }
func (e *PaymentInitiatedEvent) AggregateID() string { return e.PaymentID }

// PaymentSucceededEvent is emitted when the provider confirms payment.
type PaymentSucceededEvent struct {
	PaymentID         string    `json:"payment_id"`
	SaleID            string    `json:"sale_id"`
	CheckoutRequestID string    `json:"checkout_request_id"`
	ReceiptNumber     string    `json:"receipt_number"`
	ConfirmedAt       time.Time `json:"confirmed_at"`
}

func (e *PaymentSucceededEvent) EventType() string   { return "payment.succeeded" }
func (e *PaymentSucceededEvent) AggregateID() string { return e.PaymentID }

// PaymentFailedEvent is emitted when the provider reports failure or the
// customer cancels the prompt.
type PaymentFailedEvent struct {
	PaymentID         string        `json:"payment_id"`
	SaleID            string        `json:"sale_id"`
	CheckoutRequestID string        `json:"checkout_request_id"`
	Status            PaymentStatus `json:"status"`
	ResultCode        int64         `json:"result_code"`
	ResultDesc        string        `json:"result_desc"`
	FailedAt          time.Time     `json:"failed_at"`
}

func (e *PaymentFailedEvent) EventType() string   { return "payment.failed" }
func (e *PaymentFailedEvent) AggregateID() string { return e.PaymentID }

// ProductCreatedEvent is emitted when a product is added to the catalog.
type ProductCreatedEvent struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	CategoryID string    `json:"category_id"`
	Price      *Money    `json:"price"`
	Stock      int64     `json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
}

func (e *ProductCreatedEvent) EventType() string   { return "product.created" }
func (e *ProductCreatedEvent) AggregateID() string { return e.ProductID }

// ProductPriceChangedEvent is emitted on every price change.
type ProductPriceChangedEvent struct {
	ProductID string    `json:"product_id"`
	OldPrice  *Money    `json:"old_price"`
	NewPrice  *Money    `json:"new_price"`
	ChangedAt time.Time `json:"changed_at"`
}

func (e *ProductPriceChangedEvent) EventType() string   { return "product.price_changed" }
func (e *ProductPriceChangedEvent) AggregateID() string { return e.ProductID }

// ProductDeactivatedEvent is emitted when a product is withdrawn from sale.
type ProductDeactivatedEvent struct {
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *ProductDeactivatedEvent) EventType() string   { return "product.deactivated" }
func (e *ProductDeactivatedEvent) AggregateID() string { return e.ProductID }

// StockAdjustedEvent is emitted for manual stock movements.
type StockAdjustedEvent struct {
	ProductID string        `json:"product_id"`
	Kind      InventoryKind `json:"kind"`
	Delta     int64         `json:"delta"`
	NewStock  int64         `json:"new_stock"`
	Timestamp time.Time     `json:"timestamp"`
}

func (e *StockAdjustedEvent) EventType() string   { return "product.stock_adjusted" }
func (e *StockAdjustedEvent) AggregateID() string { return e.ProductID }

// ProductLowStockEvent is emitted when stock falls to or below the product's
// minimum level.
type ProductLowStockEvent struct {
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	StockQuantity int64     `json:"stock_quantity"`
	MinStockLevel int64     `json:"min_stock_level"`
	Timestamp     time.Time `json:"timestamp"`
}

func (e *ProductLowStockEvent) EventType() string   { return "product.low_stock" }
func (e *ProductLowStockEvent) AggregateID() string { return e.ProductID }

// ProductOversoldEvent is emitted when a confirmed mobile-money sale needs
// more units than are left. Stock is clamped at zero and the shortfall is
// reported for manual follow-up.
type ProductOversoldEvent struct {
	ProductID string    `json:"product_id"`
	SaleID    string    `json:"sale_id"`
	Requested int64     `json:"requested"`
	Shortfall int64     `json:"shortfall"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *ProductOversoldEvent) EventType() string   { return "product.oversold" }
func (e *ProductOversoldEvent) AggregateID() string { return e.ProductID }

// CustomerCreatedEvent is emitted when a customer is registered.
type CustomerCreatedEvent struct {
	CustomerID string      `json:"customer_id"`
	Name       string      `json:"name"`
	Tier       LoyaltyTier `json:"tier"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (e *CustomerCreatedEvent) EventType() string   { return "customer.created" }
func (e *CustomerCreatedEvent) AggregateID() string { return e.CustomerID }

// LoyaltyAccruedEvent is emitted when a completed sale earns points.
type LoyaltyAccruedEvent struct {
	CustomerID  string    `json:"customer_id"`
	SaleID      string    `json:"sale_id"`
	Points      int64     `json:"points"`
	TotalPoints int64     `json:"total_points"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e *LoyaltyAccruedEvent) EventType() string   { return "customer.loyalty_accrued" }
func (e *LoyaltyAccruedEvent) AggregateID() string { return e.CustomerID }

// DiscountCreatedEvent is emitted when a discount is defined.
type DiscountCreatedEvent struct {
	DiscountID string    `json:"discount_id"`
	Name       string    `json:"name"`
	Percentage string    `json:"percentage"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidTo    time.Time `json:"valid_to"`
}

func (e *DiscountCreatedEvent) EventType() string   { return "discount.created" }
func (e *DiscountCreatedEvent) AggregateID() string { return e.DiscountID }

// CategoryCreatedEvent is emitted when a category is added.
type CategoryCreatedEvent struct {
	CategoryID string    `json:"category_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

func (e *CategoryCreatedEvent) EventType() string   { return "category.created" }
func (e *CategoryCreatedEvent) AggregateID() string { return e.CategoryID }
