package domain

import (
	"strings"
	"time"
)

// Customer field names for change tracking.
const (
	FieldCustomerLoyalty = "loyalty"
)

// PointsPerUnit is the spend that earns one loyalty point.
const PointsPerUnit = 10

// CustomerParams carries the fields of a new customer.
type CustomerParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Tier    LoyaltyTier
}

// Customer accrues loyalty from completed sales only.
type Customer struct {
	events

	id            string
	name          string
	email         string
	phone         string
	address       string
	tier          LoyaltyTier
	loyaltyPoints int64
	totalSpent    *Money
	createdAt     time.Time

	changes *ChangeTracker
}

func NewCustomer(id string, p CustomerParams, now time.Time) (*Customer, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	tier := p.Tier
	if tier == "" {
		tier = TierBronze
	}
	if _, err := ParseLoyaltyTier(string(tier)); err != nil {
		return nil, err
	}

	c := &Customer{
		id:         id,
		name:       name,
		email:      strings.TrimSpace(p.Email),
		phone:      strings.TrimSpace(p.Phone),
		address:    p.Address,
		tier:       tier,
		totalSpent: Zero(),
		createdAt:  now,
		changes:    NewChangeTracker(),
	}
	c.record(&CustomerCreatedEvent{CustomerID: id, Name: name, Tier: tier, CreatedAt: now})
	return c, nil
}

func ReconstructCustomer(
	id, name, email, phone, address string,
	tier LoyaltyTier,
	loyaltyPoints int64,
	totalSpent *Money,
	createdAt time.Time,
) *Customer {
	return &Customer{
		id:            id,
		name:          name,
		email:         email,
		phone:         phone,
		address:       address,
		tier:          tier,
		loyaltyPoints: loyaltyPoints,
		totalSpent:    totalSpent,
		createdAt:     createdAt,
		changes:       NewChangeTracker(),
	}
}

func (c *Customer) ID() string              { return c.id }
func (c *Customer) Name() string            { return c.name }
func (c *Customer) Email() string           { return c.email }
func (c *Customer) Phone() string           { return c.phone }
func (c *Customer) Address() string         { return c.address }
func (c *Customer) Tier() LoyaltyTier       { return c.tier }
func (c *Customer) LoyaltyPoints() int64    { return c.loyaltyPoints }
func (c *Customer) TotalSpent() *Money      { return c.totalSpent.Copy() }
func (c *Customer) CreatedAt() time.Time    { return c.createdAt }
func (c *Customer) Changes() *ChangeTracker { return c.changes }

// AccrueLoyalty credits a completed sale: floor(final / 10) points and the
// final amount added to total spend. It returns the points earned.
func (c *Customer) AccrueLoyalty(saleID string, finalAmount *Money, now time.Time) int64 {
	points := finalAmount.FloorDiv(PointsPerUnit)
	if points < 0 {
		points = 0
	}
	c.loyaltyPoints += points
	c.totalSpent = c.totalSpent.Add(finalAmount)
	c.changes.MarkDirty(FieldCustomerLoyalty)

	if points > 0 {
		c.record(&LoyaltyAccruedEvent{
			CustomerID:  c.id,
			SaleID:      saleID,
			Points:      points,
			TotalPoints: c.loyaltyPoints,
			Timestamp:   now,
		})
	}
	return points
}
