// Package ledger holds the arithmetic of the club: loan totals, balances,
// payoff detection, the weekly schedule and raffle ticket allocation.
// Nothing here touches the database; callers load current totals and pass
// them in on every request.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for every amount (cents).
const MoneyScale = 2

var (
	// Tolerance absorbs rounding noise when comparing balances. It is one
	// currency unit, not a discount.
	Tolerance = decimal.NewFromInt(1)

	hundred = decimal.NewFromInt(100)
)

// Round rounds to cents, half away from zero
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Sum adds amounts without losing fractional cents
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatCOP renders an amount the way receipts show it: "$110.000" or "$1.234,50"
func FormatCOP(d decimal.Decimal) string {
	d = Round(d)
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}

	whole := d.Truncate(0)
	cents := d.Sub(whole).Mul(hundred).IntPart()

	digits := whole.String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String()
	if cents != 0 {
		frac := decimal.NewFromInt(cents).String()
		if len(frac) == 1 {
			frac = "0" + frac
		}
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
