package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part representa una pieza/repuesto del inventario del taller.
// Quantity solo cambia vía movimientos del Ledger (o ajuste administrativo), nunca directamente desde la orden.
type Part struct {
	ID          string
	Name        string
	UnitCost    decimal.Decimal // costo promedio ponderado
	SalePrice   decimal.Decimal // precio de venta por unidad
	Quantity    int             // existencias (>= 0)
	MinQuantity int             // umbral mínimo para alerta de reposición
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BelowMinimum indica si la existencia quedó por debajo del umbral mínimo.
func (p *Part) BelowMinimum() bool {
	return p.Quantity < p.MinQuantity
}
