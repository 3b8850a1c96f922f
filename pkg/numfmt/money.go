package numfmt

import (
	"github.com/shopspring/decimal"
)

// Money represents a currency amount with decimal precision
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a finite float64
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// Round rounds the money amount to cents, half away from zero
func (m Money) Round() Money {
	return Money{m.Decimal.Round(2)}
}

// Abs returns the absolute amount
func (m Money) Abs() Money {
	return Money{m.Decimal.Abs()}
}

// IsNegative checks if the amount is negative
func (m Money) IsNegative() bool {
	return m.Decimal.IsNegative()
}
