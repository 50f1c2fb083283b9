package stats

import "github.com/shopspring/decimal"

// percentage returns made/attempted as a percent rounded half away from zero to one
// decimal place, or 0 when nothing was attempted.
func percentage(made, attempted float64) float64 {
	if attempted <= 0 {
		return 0
	}

	pct := decimal.NewFromFloat(made).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromFloat(attempted), 8).
		Round(1)

	return pct.InexactFloat64()
}
