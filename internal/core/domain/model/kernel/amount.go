package kernel

import (
	"fmt"

	"orderhub/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits kept for monetary values.
const AmountScale = 2

// Amount is a non-negative monetary value with two decimal places.
type Amount struct {
	value decimal.Decimal
}

// ZeroAmount is a valid amount of 0.00.
var ZeroAmount = Amount{value: decimal.Zero}

// NewAmount validates and rounds d to AmountScale.
func NewAmount(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, errs.NewValueIsInvalidErrorWithCause(
			"amount", fmt.Errorf("%s is negative", d.String()),
		)
	}
	return Amount{value: d.Round(AmountScale)}, nil
}

// AmountFromString parses a decimal string such as "100.00".
func AmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewAmount(d)
}

func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.value.IsPositive()
}

func (a Amount) Add(other Amount) Amount {
	return Amount{value: a.value.Add(other.value)}
}

// Mul multiplies by a non-negative quantity.
func (a Amount) Mul(quantity int) Amount {
	if quantity < 0 {
		quantity = 0
	}
	return Amount{value: a.value.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (a Amount) IsEqual(other Amount) bool {
	return a.value.Equal(other.value)
}

// String renders the amount with exactly two decimals.
func (a Amount) String() string {
	return a.value.StringFixed(AmountScale)
}
