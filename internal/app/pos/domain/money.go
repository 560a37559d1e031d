package domain

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
)

var (
	hundred = big.NewInt(100)
	half    = big.NewRat(1, 2)
)

// Money is an exact decimal amount backed by big.Rat. Amounts are kept exact
// through intermediate arithmetic and rounded to cents only where a value is
// persisted or shown to a customer.
type Money struct {
	rat *big.Rat
}

// NewMoney creates numerator/denominator, e.g. NewMoney(24999, 100) is 249.99.
func NewMoney(numerator, denominator int64) (*Money, error) {
	if denominator == 0 {
		return nil, fmt.Errorf("denominator cannot be zero")
	}
	return &Money{rat: big.NewRat(numerator, denominator)}, nil
}

// NewMoneyFromRat copies rat. A nil rat is zero.
func NewMoneyFromRat(rat *big.Rat) *Money {
	if rat == nil {
		return Zero()
	}
	return &Money{rat: new(big.Rat).Set(rat)}
}

// FromCents creates an amount from an integer number of cents.
func FromCents(cents int64) *Money {
	return &Money{rat: big.NewRat(cents, 100)}
}

// FromUnits creates a whole-unit amount.
func FromUnits(units int64) *Money {
	return &Money{rat: new(big.Rat).SetInt64(units)}
}

// Zero returns a zero amount.
func Zero() *Money {
	return &Money{rat: new(big.Rat)}
}

// ParseMoney parses a plain decimal such as "1500" or "249.99". At most two
// fractional digits are accepted.
func ParseMoney(s string) (*Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty amount", ErrInvalidMoney)
	}
	if strings.ContainsAny(s, "eE/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > 2 {
		return nil, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidMoney, s)
	}
	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	return &Money{rat: rat}, nil
}

// Rat returns a copy of the underlying value, for NUMERIC columns.
func (m *Money) Rat() *big.Rat {
	return new(big.Rat).Set(m.rat)
}

func (m *Money) Add(other *Money) *Money {
	return &Money{rat: new(big.Rat).Add(m.rat, other.rat)}
}

func (m *Money) Subtract(other *Money) *Money {
	return &Money{rat: new(big.Rat).Sub(m.rat, other.rat)}
}

// MultiplyByInt scales by an integer quantity.
func (m *Money) MultiplyByInt(n int64) *Money {
	return &Money{rat: new(big.Rat).Mul(m.rat, new(big.Rat).SetInt64(n))}
}

// MultiplyByRat scales by a rational factor such as a tax rate.
func (m *Money) MultiplyByRat(rat *big.Rat) *Money {
	return &Money{rat: new(big.Rat).Mul(m.rat, rat)}
}

// RoundToCents rounds half away from zero to two decimal places.
func (m *Money) RoundToCents() *Money {
	return &Money{rat: new(big.Rat).SetFrac(roundHalfUp(m.rat, hundred), hundred)}
}

// RoundToUnits rounds half away from zero to a whole number and returns it.
func (m *Money) RoundToUnits() int64 {
	return roundHalfUp(m.rat, big.NewInt(1)).Int64()
}

// FloorDiv returns floor(m / divisor) for a positive divisor. Used for
// loyalty points, one point per ten currency units spent.
func (m *Money) FloorDiv(divisor int64) int64 {
	if divisor <= 0 {
		return 0
	}
	den := new(big.Int).Mul(m.rat.Denom(), big.NewInt(divisor))
	// Div is Euclidean division; with a positive divisor it floors.
	return new(big.Int).Div(m.rat.Num(), den).Int64()
}

// ClampZero returns m, or zero when m is negative.
func (m *Money) ClampZero() *Money {
	if m.IsNegative() {
		return Zero()
	}
	return m.Copy()
}

// Min returns the smaller of m and other.
func (m *Money) Min(other *Money) *Money {
	if other.LessThan(m) {
		return other.Copy()
	}
	return m.Copy()
}

func (m *Money) IsZero() bool     { return m.rat.Sign() == 0 }
func (m *Money) IsNegative() bool { return m.rat.Sign() < 0 }
func (m *Money) IsPositive() bool { return m.rat.Sign() > 0 }

func (m *Money) Cmp(other *Money) int          { return m.rat.Cmp(other.rat) }
func (m *Money) LessThan(other *Money) bool    { return m.rat.Cmp(other.rat) < 0 }
func (m *Money) GreaterThan(other *Money) bool { return m.rat.Cmp(other.rat) > 0 }
func (m *Money) Equals(other *Money) bool      { return m.rat.Cmp(other.rat) == 0 }

// Float64 is for display only.
func (m *Money) Float64() float64 {
	f, _ := m.rat.Float64()
	return f
}

// String renders two decimal places, rounding half away from zero.
func (m *Money) String() string {
	return m.rat.FloatString(2)
}

func (m *Money) Copy() *Money {
	return &Money{rat: new(big.Rat).Set(m.rat)}
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.rat == nil {
		return []byte("null"), nil
	}
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: null", ErrInvalidMoney)
	}
	raw := string(bytes.Trim(data, `"`))
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	m.rat = parsed.rat
	return nil
}

// roundHalfUp returns round(r * scale) with ties away from zero.
func roundHalfUp(r *big.Rat, scale *big.Int) *big.Int {
	scaled := new(big.Rat).Mul(new(big.Rat).Abs(r), new(big.Rat).SetInt(scale))
	scaled.Add(scaled, half)
	out := new(big.Int).Div(scaled.Num(), scaled.Denom())
	if r.Sign() < 0 {
		out.Neg(out)
	}
	return out
}
