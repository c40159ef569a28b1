// Package decimal holds the money arithmetic used for invoice amounts.
// Amounts are in soles (PEN) with two decimals; tax is IGV.
package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// DefaultIGVRate is the general sales tax rate in percent.
const DefaultIGVRate = 18

// Places is the number of decimals kept on amounts sent to the API.
const Places = 2

// FromInt creates decimal from an integer amount
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Round rounds half away from zero to two places
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Mul multiplies two decimals, rounds to 2 places
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Round(Places)
}

// CalculateIGV computes the tax on a net amount: amount * (rate/100).
func CalculateIGV(amount decimal.Decimal, ratePercent decimal.Decimal) decimal.Decimal {
	if ratePercent.IsZero() {
		return Zero
	}
	hundred := decimal.NewFromInt(100)
	return amount.Mul(ratePercent).Div(hundred).Round(Places)
}

// NetFromGross splits a tax-inclusive price: gross / (1 + rate/100).
func NetFromGross(gross decimal.Decimal, ratePercent decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	factor := hundred.Add(ratePercent).Div(hundred)
	return gross.DivRound(factor, Places)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// Format renders an amount with exactly two decimals, e.g. "118.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// WithinTolerance reports whether a and b differ by at most one cent.
// Line-by-line rounding can drift a total by that much.
func WithinTolerance(a, b decimal.Decimal) bool {
	cent := decimal.New(1, -Places)
	return a.Sub(b).Abs().LessThanOrEqual(cent)
}
