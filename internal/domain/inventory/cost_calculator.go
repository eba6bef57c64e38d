package inventory

import "github.com/shopspring/decimal"

// MaxUnitCost costo unitario máximo admitido en una entrada (NUMERIC(14,4)).
var MaxUnitCost = decimal.NewFromInt(1_000_000_000)

// WeightedAverageCost calcula el nuevo costo unitario de una pieza tras una entrada.
// NuevoCosto = ((Existencia * CostoActual) + (CantEntrada * CostoEntrada)) / (Existencia + CantEntrada)
// Con existencia resultante <= 0 devuelve el costo de entrada.
func WeightedAverageCost(onHand int, currentCost decimal.Decimal, inQty int, inCost decimal.Decimal) decimal.Decimal {
	total := onHand + inQty
	if total <= 0 || onHand < 0 {
		return inCost
	}
	num := decimal.NewFromInt(int64(onHand)).Mul(currentCost).
		Add(decimal.NewFromInt(int64(inQty)).Mul(inCost))
	return num.Div(decimal.NewFromInt(int64(total))).Round(4)
}
