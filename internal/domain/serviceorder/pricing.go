package serviceorder

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// DefaultMaxAmount cota superior para montos de entrada (descuento, precios unitarios) y subtotal.
var DefaultMaxAmount = decimal.NewFromInt(1_000_000_000)

// AmountCeiling límite absoluto de montos persistidos: NUMERIC(14,2) admite hasta 999999999999.99.
var AmountCeiling = decimal.RequireFromString("999999999999.99")

// PricingCalculator deriva el total de la orden a partir de sus líneas y el descuento.
type PricingCalculator struct {
	MaxAmount decimal.Decimal
}

// NewPricingCalculator construye la calculadora; maxAmount <= 0 usa DefaultMaxAmount
// y valores sobre AmountCeiling se recortan a AmountCeiling.
func NewPricingCalculator(maxAmount decimal.Decimal) PricingCalculator {
	if !maxAmount.IsPositive() {
		maxAmount = DefaultMaxAmount
	}
	if maxAmount.GreaterThan(AmountCeiling) {
		maxAmount = AmountCeiling
	}
	return PricingCalculator{MaxAmount: maxAmount}
}

// Subtotal suma de subtotales de servicios y piezas, antes del descuento.
func (c PricingCalculator) Subtotal(services []entity.OrderServiceLine, parts []entity.OrderPartLine) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range services {
		subtotal = subtotal.Add(l.Subtotal())
	}
	for _, l := range parts {
		subtotal = subtotal.Add(l.Subtotal())
	}
	return subtotal
}

// ComputeTotal = Σ servicios + Σ (cantidad × precio) − descuento, redondeado a 2 decimales.
// Un subtotal por encima de MaxAmount es un error de entrada (campo total).
func (c PricingCalculator) ComputeTotal(services []entity.OrderServiceLine, parts []entity.OrderPartLine, discount decimal.Decimal) (decimal.Decimal, error) {
	if discount.IsNegative() {
		return decimal.Zero, &domain.InvalidDiscountError{Reason: "el descuento no puede ser negativo"}
	}
	if discount.GreaterThan(c.MaxAmount) {
		return decimal.Zero, &domain.InvalidDiscountError{Reason: "el descuento excede el máximo permitido " + c.MaxAmount.String()}
	}
	subtotal := c.Subtotal(services, parts)
	if subtotal.GreaterThan(c.MaxAmount) {
		return decimal.Zero, domain.NewValidation("total",
			"el subtotal "+subtotal.StringFixed(2)+" excede el máximo permitido "+c.MaxAmount.StringFixed(2))
	}
	if discount.GreaterThan(subtotal) {
		return decimal.Zero, &domain.InvalidDiscountError{
			Reason: "el descuento " + discount.StringFixed(2) + " es mayor que el subtotal " + subtotal.StringFixed(2),
		}
	}
	return subtotal.Sub(discount).Round(2), nil
}
