package pricing

import "github.com/shopspring/decimal"

// CalculateMargin returns the margin added on top of items cost: the commission
// rounded to tens plus whatever rounds items cost itself to tens. Rounding is
// half-to-even. Non-positive items cost yields zero margin.
func CalculateMargin(itemsCost, commission int64) int64 {
	if itemsCost <= 0 {
		return 0
	}
	cost := decimal.NewFromInt(itemsCost)
	base := cost.Mul(decimal.NewFromInt(commission)).Div(decimal.NewFromInt(100))
	remainder := RoundToTens(cost).Sub(cost)
	return RoundToTens(base).Add(remainder).IntPart()
}

// RoundToTens rounds to the nearest multiple of ten, ties to even
func RoundToTens(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(-1)
}
