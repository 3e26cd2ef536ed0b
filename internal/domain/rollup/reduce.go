package rollup

import (
	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/shopspring/decimal"
)

// meanPrecision bounds the intermediate quotient before the final rounding.
// Terminating means fit well inside it, so ties are detected exactly.
const meanPrecision = 28

// Mean returns the arithmetic mean of the window of s covered by period,
// rounded half-to-even to places. It returns false when the window is empty.
func Mean(s Series, period model.Period, places int32) (decimal.Decimal, bool) {
	window := model.Window(s, period)
	if len(window) == 0 {
		return decimal.Decimal{}, false
	}
	sum := decimal.Sum(window[0], window[1:]...)
	mean := sum.DivRound(decimal.NewFromInt(int64(len(window))), meanPrecision)
	return mean.RoundBank(places), true
}

// MeanPtr is Mean returning nil for an empty window.
func MeanPtr(s Series, period model.Period, places int32) *decimal.Decimal {
	mean, ok := Mean(s, period, places)
	if !ok {
		return nil
	}
	return &mean
}
