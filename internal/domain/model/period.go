package model

import "strconv"

// AllRounds is the period that spans every available round.
const AllRounds Period = -1

// Period is a lookback window: a positive count of the most recent rounds,
// or AllRounds.
type Period int

// DefaultPeriods is the lookback set evaluated when none is configured.
func DefaultPeriods() []Period {
	return []Period{1, 2, 3, 4, 5, 10, 20, 40, 60, 120, 250, AllRounds}
}

// Valid reports whether p is AllRounds or a positive count.
func (p Period) Valid() bool {
	return p == AllRounds || p > 0
}

// Label renders the period for the "period" label: "<N>d" or "all".
func (p Period) Label() string {
	if p == AllRounds {
		return "all"
	}
	return strconv.Itoa(int(p)) + "d"
}

// Window returns the leading part of a most-recent-first sequence covered by
// p. Invalid periods cover nothing.
func Window[T any](seq []T, p Period) []T {
	switch {
	case p == AllRounds:
		return seq
	case p <= 0:
		return nil
	case int(p) >= len(seq):
		return seq
	default:
		return seq[:p]
	}
}
