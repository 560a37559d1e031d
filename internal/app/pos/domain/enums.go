package domain

import (
	"fmt"
	"strings"
)

// PaymentMethod is how a sale is tendered.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentCard        PaymentMethod = "card"
	PaymentMobileMoney PaymentMethod = "mobile_money"
	PaymentCredit      PaymentMethod = "credit"
)

// ParsePaymentMethod accepts the canonical names plus "mobile", the name the
// till front-end has always sent for M-Pesa.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentCash, nil
	case "card":
		return PaymentCard, nil
	case "mobile_money", "mobile", "mpesa":
		return PaymentMobileMoney, nil
	case "credit":
		return PaymentCredit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
	}
}

// IsAsynchronous reports whether settlement is confirmed later by a provider
// callback. Such sales start pending.
func (m PaymentMethod) IsAsynchronous() bool {
	return m == PaymentMobileMoney
}

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

var saleTransitions = map[SaleStatus][]SaleStatus{
	SaleStatusPending: {SaleStatusCompleted, SaleStatusCancelled},
}

// CanTransitionTo reports whether s may move to next. Completed and
// cancelled are terminal.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	for _, allowed := range saleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus is the state of a mobile-money payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsTerminal reports whether the provider outcome has been recorded.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending
}

// LoyaltyTier is an ordered customer tier.
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "bronze"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
)

var tierDiscounts = map[LoyaltyTier]int64{
	TierBronze:   0,
	TierSilver:   5,
	TierGold:     10,
	TierPlatinum: 15,
}

var tierRanks = map[LoyaltyTier]int{
	TierBronze:   0,
	TierSilver:   1,
	TierGold:     2,
	TierPlatinum: 3,
}

// ParseLoyaltyTier parses a tier name. Empty means bronze.
func ParseLoyaltyTier(s string) (LoyaltyTier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TierBronze, nil
	}
	tier := LoyaltyTier(s)
	if _, ok := tierRanks[tier]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLoyaltyTier, s)
	}
	return tier, nil
}

// DiscountPercent is the tier's advertised discount. It is informational;
// sales do not apply it automatically.
func (t LoyaltyTier) DiscountPercent() int64 {
	return tierDiscounts[t]
}

// Rank orders tiers, bronze lowest.
func (t LoyaltyTier) Rank() int {
	return tierRanks[t]
}

// InventoryKind classifies a stock ledger entry.
type InventoryKind string

const (
	InventoryIn         InventoryKind = "in"
	InventoryOut        InventoryKind = "out"
	InventoryAdjustment InventoryKind = "adjustment"
	InventorySale       InventoryKind = "sale"
	InventoryReturn     InventoryKind = "return"
)

// ParseInventoryKind parses a kind. "sale" is accepted here because ledger
// rows are read back through it, but AdjustStock refuses it.
func ParseInventoryKind(s string) (InventoryKind, error) {
	switch k := InventoryKind(strings.ToLower(strings.TrimSpace(s))); k {
	case InventoryIn, InventoryOut, InventoryAdjustment, InventorySale, InventoryReturn:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidInventoryKind, s)
	}
}

// CashUnderpaymentPolicy decides what happens when cash tendered is below
// the sale total.
type CashUnderpaymentPolicy string

const (
	// UnderpaymentAllow commits the sale with zero change.
	UnderpaymentAllow CashUnderpaymentPolicy = "allow"
	// UnderpaymentReject fails the sale with ErrInsufficientTender.
	UnderpaymentReject CashUnderpaymentPolicy = "reject"
)
