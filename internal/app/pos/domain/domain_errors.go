package domain

import (
	"errors"
	"fmt"
)

// Domain errors as sentinel values
var (
	ErrInvalidMoney = errors.New("invalid money amount")
	ErrEmptyName    = errors.New("name cannot be empty")

	// Catalog errors
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNotActive     = errors.New("product is not active")
	ErrInvalidPrice         = errors.New("product price must be positive")
	ErrInvalidCostPrice     = errors.New("product cost price cannot be negative")
	ErrEmptySKU             = errors.New("product SKU cannot be empty")
	ErrDuplicateSKU         = errors.New("product SKU already exists")
	ErrInvalidCategory      = errors.New("product category cannot be empty")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrInvalidStockLevel    = errors.New("stock levels cannot be negative")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrAlreadyInactive      = errors.New("product is already inactive")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidAdjustment    = errors.New("stock adjustment cannot be zero")
	ErrInvalidInventoryKind = errors.New("invalid inventory transaction kind")

	// Customer errors
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrInvalidLoyaltyTier = errors.New("invalid loyalty tier")

	// Discount errors
	ErrDiscountNotFound       = errors.New("discount not found")
	ErrInvalidDiscountPeriod  = errors.New("discount end date must be after start date")
	ErrInvalidDiscountPercent = errors.New("discount percentage must be between 0 and 100")
	ErrInvalidMinimumAmount   = errors.New("discount minimum amount cannot be negative")

	// Sale errors
	ErrEmptyCart             = errors.New("cart is empty")
	ErrMissingCashier        = errors.New("cashier is required")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidPhoneNumber    = errors.New("invalid phone number")
	ErrInsufficientTender    = errors.New("amount tendered is less than the sale total")
	ErrInvalidTender         = errors.New("amount tendered cannot be negative")
	ErrSaleNotFound          = errors.New("sale not found")
	ErrInvalidSaleTransition = errors.New("invalid sale status transition")

	// Payment errors
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentAlreadyFinalized = errors.New("payment is already finalized")
	ErrPaymentInitiationFailed = errors.New("payment initiation failed")
	ErrInvalidPaymentAmount    = errors.New("payment amount must be at least 1")
)

// InsufficientStockError reports the first line of a cart that cannot be
// fulfilled. It matches ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// PaymentInitiationError wraps a failed mobile-money push. The sale that
// triggered it is rolled back.
type PaymentInitiationError struct {
	Err error
}

func (e *PaymentInitiationError) Error() string {
	return fmt.Sprintf("payment initiation failed: %v", e.Err)
}

func (e *PaymentInitiationError) Unwrap() error { return e.Err }

func (e *PaymentInitiationError) Is(target error) bool {
	return target == ErrPaymentInitiationFailed
}
