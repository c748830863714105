// Package money holds the conventions for currency arithmetic used by
// every financial calculation in the service: exact decimals, two
// fractional digits, rounding applied at each computation boundary
// rather than deferred to presentation.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round normalizes an amount to two decimal places. decimal.Round uses
// round-half-away-from-zero, which for the non-negative amounts handled
// here is exactly round-half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent converts an integer percentage (10 = 10%) to its decimal
// fraction (0.1).
func Percent(p int) decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(hundred)
}

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// FloorZero clamps negative amounts to zero. Remaining balances are
// never allowed to go below zero even when rounding works against us.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum adds a series of amounts without rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
