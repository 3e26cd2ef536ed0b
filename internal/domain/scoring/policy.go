// Package scoring turns raw submission scores into per-score observations and
// derives payout ratios from them.
package scoring

import "github.com/shopspring/decimal"

// Policy decides whether a nullable number counts as present.
//
// The scoring API reports both "no value" and "exactly zero" in ways that are
// hard to tell apart, so the default treats zero as absent. ZeroIsPresent
// keeps genuine zeros.
type Policy struct {
	ZeroIsPresent bool
}

// DefaultPolicy treats null and zero alike as absent.
func DefaultPolicy() Policy {
	return Policy{}
}

// Present reports whether d carries a usable value.
func (p Policy) Present(d decimal.NullDecimal) bool {
	if !d.Valid {
		return false
	}
	return p.ZeroIsPresent || !d.Decimal.IsZero()
}
