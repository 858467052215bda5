package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Decimal-backed monetary amount (PLN)
// =============================================================================

// Money is a monetary amount. All money in the pipeline is carried as a
// decimal so that compounding is exact and independent of float evaluation
// order. Provider data (index fractions, factors) enters as float64 and is
// converted once, after being guarded.
type Money struct {
	d decimal.Decimal
}

// internalScale is the number of decimal places kept for running capitals
// between compounding steps.
const internalScale = 8

// outputScale is the number of decimal places of every monetary figure in Output.
const outputScale = 2

func NewMoney(value float64) Money { return Money{d: decimal.NewFromFloat(value)} }

func NewMoneyFromInt(value int64) Money { return Money{d: decimal.NewFromInt(value)} }

func MoneyFromDecimal(d decimal.Decimal) Money { return Money{d: d} }

func ZeroMoney() Money { return Money{d: decimal.Zero} }

// ParseMoney parses a decimal string such as "6500.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d: d}, nil
}

func (m Money) Add(b Money) Money { return Money{d: m.d.Add(b.d)} }

func (m Money) Sub(b Money) Money { return Money{d: m.d.Sub(b.d)} }

func (m Money) Mul(s decimal.Decimal) Money { return Money{d: m.d.Mul(s)} }

func (m Money) Div(s decimal.Decimal) Money { return Money{d: m.d.Div(s)} }

func (m Money) Round(places int32) Money { return Money{d: m.d.Round(places)} }

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) Equal(b Money) bool { return m.d.Equal(b.d) }

func (m Money) GreaterThan(b Money) bool { return m.d.GreaterThan(b.d) }

func (m Money) LessThan(b Money) bool { return m.d.LessThan(b.d) }

func (m Money) Cmp(b Money) int { return m.d.Cmp(b.d) }

// String formats the amount with two decimal places.
func (m Money) String() string { return m.d.StringFixed(outputScale) }

// Max returns the larger of m and b.
func (m Money) Max(b Money) Money {
	if m.LessThan(b) {
		return b
	}
	return m
}

// Float64 returns the nearest float64. Only for presentation layers.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// MarshalJSON encodes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.d.UnmarshalJSON(data)
}
