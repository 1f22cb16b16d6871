package kap

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ReportingCurrency is the currency every amount of the engine is expressed in.
const ReportingCurrency = "EUR"

// Money represents an amount in the reporting currency.
//
// Amounts are kept exact, rounding only happens when formatting.
type Money struct {
	value decimal.Decimal // as major unit value
}

// EUR creates Money in the reporting currency.
func EUR[T float64 | int | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses a decimal string as an amount.
func ParseMoney(s string) (Money, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: v}, nil
}

// currency returns the reporting currency definition.
func (m Money) currency() *money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return money.New(0, ReportingCurrency).Currency()
}

// String returns the string representation of the money value, rounded to cents.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.Round().IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(amount Money) bool      { return m.value.LessThan(amount.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(n Quantity) Money            { return Money{value: m.value.Mul(n.value)} }
func (m Money) Div(n Quantity) Money            { return Money{value: m.value.Div(n.value)} }
func (m Money) MulRate(r Rate) Money            { return Money{value: m.value.Mul(r.value)} }
func (m Money) Decimal() decimal.Decimal        { return m.value }

// Round returns m rounded to the currency's minor unit.
func (m Money) Round() Money {
	return Money{value: m.value.Round(int32(m.currency().Fraction))}
}

// MaxM returns the largest of a and b.
func MaxM(a, b Money) Money {
	if b.GreaterThan(a) {
		return b
	}
	return a
}

// MinM returns the smallest of a and b.
func MinM(a, b Money) Money {
	if b.LessThan(a) {
		return b
	}
	return a
}

// MarshalJSON writes the exact amount, the currency is implied.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}

func (m *Money) UnmarshalJSON(decimalBytes []byte) error {
	return m.value.UnmarshalJSON(decimalBytes)
}
