package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN     = "IN"     // entrada
	MovementTypeOUT    = "OUT"    // salida
	MovementTypeADJUST = "ADJUST" // ajuste manual
)

// InventoryMovement registro inmutable de un cambio de existencias de una pieza.
// Un movimiento por delta aplicado; nunca se actualiza ni se elimina.
type InventoryMovement struct {
	ID             string
	PartID         string
	OrderID        *string // nil en ajustes manuales
	Type           string
	Quantity       int // positivo entrada, negativo salida
	QuantityBefore int
	QuantityAfter  int
	Reason         string
	CreatedBy      string
	CreatedAt      time.Time
}
