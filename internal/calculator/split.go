package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of fractional digits in a currency amount.
const CurrencyPlaces = 2

// ErrNoParts is returned when asked to split across fewer than one part.
var ErrNoParts = errors.New("must split across at least one part")

var cent = decimal.New(1, -CurrencyPlaces)

// SplitEvenly divides total into parts equal shares, rounded to the cent away
// from zero whenever the division is not exact. Rounding up on the cent
// boundary means the shares never sum to less than total.
//
//	SplitEvenly(100.00, 3) = 33.34
//	SplitEvenly(100.00, 4) = 25.00
func SplitEvenly(total decimal.Decimal, parts int) (decimal.Decimal, error) {
	if parts < 1 {
		return decimal.Zero, ErrNoParts
	}

	// q is truncated toward zero at two places; a non-zero remainder means
	// the exact share lies strictly beyond q.
	q, r := total.QuoRem(decimal.NewFromInt(int64(parts)), CurrencyPlaces)
	if !r.IsZero() {
		if total.IsNegative() {
			q = q.Sub(cent)
		} else {
			q = q.Add(cent)
		}
	}
	return q, nil
}

// ResidualShare is what remains of total after billing parts-1 people share
// each. The bill manager implicitly absorbs it; it can be slightly below
// share, or negative for tiny totals, because billed shares are rounded up.
func ResidualShare(total, share decimal.Decimal, parts int) decimal.Decimal {
	if parts < 1 {
		return total
	}
	return total.Sub(share.Mul(decimal.NewFromInt(int64(parts - 1))))
}
