package scoring

import "github.com/shopspring/decimal"

var (
	alphaWeight = decimal.RequireFromString("0.3")
	mpcWeight   = decimal.RequireFromString("0.8")
)

// PayoutRatioExPF combines alpha and mpc into the payout ratio before the
// payout factor is applied.
func PayoutRatioExPF(alpha, mpc decimal.Decimal) decimal.Decimal {
	return alphaWeight.Mul(alpha).Add(mpcWeight.Mul(mpc))
}

// PayoutRatio applies the payout factor to a ratio from PayoutRatioExPF.
func PayoutRatio(payoutFactor, ratioExPF decimal.Decimal) decimal.Decimal {
	return payoutFactor.Mul(ratioExPF)
}

// Ratios holds both payout ratios for one round or one period.
type Ratios struct {
	ExPF  decimal.Decimal
	Ratio decimal.Decimal
}

// ComputeRatios returns both ratios, or false when any input is unavailable.
func ComputeRatios(alpha, mpc, payoutFactor *decimal.Decimal) (Ratios, bool) {
	if alpha == nil || mpc == nil || payoutFactor == nil {
		return Ratios{}, false
	}
	exPF := PayoutRatioExPF(*alpha, *mpc)
	return Ratios{ExPF: exPF, Ratio: PayoutRatio(*payoutFactor, exPF)}, true
}
