package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterAdjustmentRequest body para POST /api/inventory/adjustments.
// IN: quantity > 0 y unit_cost obligatorio. OUT: quantity > 0. ADJUST: quantity con signo.
type RegisterAdjustmentRequest struct {
	PartID   string           `json:"part_id"`
	Type     string           `json:"type"`
	Quantity int              `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

// MovementResponse movimiento de inventario en respuestas.
type MovementResponse struct {
	ID             string    `json:"id"`
	PartID         string    `json:"part_id"`
	OrderID        *string   `json:"order_id"`
	Type           string    `json:"type"`
	Quantity       int       `json:"quantity"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	Reason         string    `json:"reason"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// LowStockPartDTO pieza por debajo de su umbral mínimo con sugerencia de reposición.
type LowStockPartDTO struct {
	PartID             string          `json:"part_id"`
	Name               string          `json:"name"`
	Quantity           int             `json:"quantity"`
	MinQuantity        int             `json:"min_quantity"`
	Deficit            int             `json:"deficit"`             // MinQuantity - Quantity
	IdealStock         int             `json:"ideal_stock"`         // ceil(MinQuantity * 1.5)
	SuggestedOrderQty  int             `json:"suggested_order_qty"` // IdealStock - Quantity
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
}
