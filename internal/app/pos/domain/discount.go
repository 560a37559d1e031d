package domain

import (
	"math/big"
	"strings"
	"time"
)

var (
	maxPercent = big.NewRat(100, 1)
	oneHundred = big.NewRat(100, 1)
)

// DiscountParams carries the fields of a new discount.
type DiscountParams struct {
	Name          string
	Description   string
	Percentage    *big.Rat
	MinimumAmount *Money
	ValidFrom     time.Time
	ValidTo       time.Time
}

// Discount is a sale-level percentage off the pre-discount subtotal, valid
// inside an inclusive window and above a minimum spend.
type Discount struct {
	events

	id            string
	name          string
	description   string
	percentage    *big.Rat
	minimumAmount *Money
	validFrom     time.Time
	validTo       time.Time
	active        bool
	createdAt     time.Time
}

// NewDiscount validates params and creates an active discount. Window
// bounds are stored in UTC.
func NewDiscount(id string, p DiscountParams, now time.Time) (*Discount, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := validatePercentage(p.Percentage); err != nil {
		return nil, err
	}
	minimum := Zero()
	if p.MinimumAmount != nil {
		if p.MinimumAmount.IsNegative() {
			return nil, ErrInvalidMinimumAmount
		}
		minimum = p.MinimumAmount.Copy()
	}
	from, to := p.ValidFrom.UTC(), p.ValidTo.UTC()
	if !to.After(from) {
		return nil, ErrInvalidDiscountPeriod
	}

	d := &Discount{
		id:            id,
		name:          name,
		description:   p.Description,
		percentage:    new(big.Rat).Set(p.Percentage),
		minimumAmount: minimum,
		validFrom:     from,
		validTo:       to,
		active:        true,
		createdAt:     now,
	}
	d.record(&DiscountCreatedEvent{
		DiscountID: id,
		Name:       name,
		Percentage: d.percentage.FloatString(2),
		ValidFrom:  from,
		ValidTo:    to,
	})
	return d, nil
}

func ReconstructDiscount(
	id, name, description string,
	percentage *big.Rat,
	minimumAmount *Money,
	validFrom, validTo time.Time,
	active bool,
	createdAt time.Time,
) *Discount {
	return &Discount{
		id:            id,
		name:          name,
		description:   description,
		percentage:    percentage,
		minimumAmount: minimumAmount,
		validFrom:     validFrom.UTC(),
		validTo:       validTo.UTC(),
		active:        active,
		createdAt:     createdAt,
	}
}

func validatePercentage(pct *big.Rat) error {
	if pct == nil || pct.Sign() < 0 || pct.Cmp(maxPercent) > 0 {
		return ErrInvalidDiscountPercent
	}
	// At most two decimal places.
	if !new(big.Rat).Mul(pct, oneHundred).IsInt() {
		return ErrInvalidDiscountPercent
	}
	return nil
}

func (d *Discount) ID() string            { return d.id }
func (d *Discount) Name() string          { return d.name }
func (d *Discount) Description() string   { return d.description }
func (d *Discount) Percentage() *big.Rat  { return new(big.Rat).Set(d.percentage) }
func (d *Discount) MinimumAmount() *Money { return d.minimumAmount.Copy() }
func (d *Discount) ValidFrom() time.Time  { return d.validFrom }
func (d *Discount) ValidTo() time.Time    { return d.validTo }
func (d *Discount) IsActive() bool        { return d.active }
func (d *Discount) CreatedAt() time.Time  { return d.createdAt }

// IsValidAt reports active and validFrom <= t <= validTo. Both ends are
// inclusive.
func (d *Discount) IsValidAt(t time.Time) bool {
	return d.active && !t.Before(d.validFrom) && !t.After(d.validTo)
}

// Qualifies reports whether subtotal earns the discount at t.
func (d *Discount) Qualifies(subtotal *Money, t time.Time) bool {
	return d.IsValidAt(t) && !subtotal.LessThan(d.minimumAmount)
}

// AmountFor returns subtotal * percentage / 100 rounded half-up to cents,
// never more than subtotal.
func (d *Discount) AmountFor(subtotal *Money) *Money {
	factor := new(big.Rat).Quo(d.percentage, oneHundred)
	return subtotal.MultiplyByRat(factor).RoundToCents().Min(subtotal)
}
