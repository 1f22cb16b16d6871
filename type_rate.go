package kap

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is a dimensionless ratio: a partial exemption quota, a base interest
// rate or an exchange rate. 0.3 means 30%.
type Rate struct {
	value decimal.Decimal
}

// R creates a Rate.
func R[T float64 | int | int64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// ParseRate parses a decimal string like "0.0255".
func ParseRate(s string) (Rate, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, err
	}
	return Rate{value: v}, nil
}

func (r Rate) Equal(q Rate) bool             { return r.value.Equal(q.value) }
func (r Rate) IsPositive() bool              { return r.value.IsPositive() }
func (r Rate) IsZero() bool                  { return r.value.IsZero() }
func (r Rate) Mul(q Rate) Rate               { return Rate{value: r.value.Mul(q.value)} }
func (r Rate) MulQ(q Quantity) Rate          { return Rate{value: r.value.Mul(q.value)} }
func (r Rate) Decimal() decimal.Decimal      { return r.value }
func (r Rate) String() string                { return r.value.String() }
func (r Rate) LessThan(q Rate) bool          { return r.value.LessThan(q.value) }
func (r Rate) GreaterThan(q Rate) bool       { return r.value.GreaterThan(q.value) }
func (r Rate) MarshalJSON() ([]byte, error)  { return r.value.MarshalJSON() }
func (r *Rate) UnmarshalJSON(b []byte) error { return r.value.UnmarshalJSON(b) }

// Complement returns 1-r, the taxable share for an exemption quota r.
func (r Rate) Complement() Rate { return Rate{value: decimal.NewFromInt(1).Sub(r.value)} }

// Percent formats the rate as a percentage, e.g. "30%" or "2.55%".
func (r Rate) Percent() string {
	return fmt.Sprintf("%s%%", r.value.Shift(2).Round(2).String())
}
