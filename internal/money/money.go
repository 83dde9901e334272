// Package money centralises the decimal arithmetic rules for monetary values.
// All rounding is half-up to two decimal places; amounts are never negative.
package money

import "github.com/shopspring/decimal"

// Round2 rounds the amount half-up to two decimal places. decimal.Round rounds
// half away from zero, which is half-up for the non-negative amounts used here.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns base × (percent / 100) rounded half-up to two decimals.
func Percent(base decimal.Decimal, percent int64) decimal.Decimal {
	return Round2(base.Mul(decimal.NewFromInt(percent)).Div(decimal.NewFromInt(100)))
}

// Format renders the amount with exactly two decimals followed by the currency marker.
func Format(d decimal.Decimal, marker string) string {
	return d.StringFixed(2) + marker
}
