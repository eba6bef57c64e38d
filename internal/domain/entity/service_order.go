package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceOrder orden de servicio: cliente, vehículo, mecánico opcional, servicios y piezas con total calculado.
type ServiceOrder struct {
	ID            string
	CustomerID    string
	VehicleID     string
	MechanicID    *string
	OpenedAt      time.Time
	ClosedAt      *time.Time
	Status        string
	PaymentMethod *string
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderServiceLine línea de servicio de una orden; no afecta inventario.
type OrderServiceLine struct {
	OrderID   string
	ServiceID string
	Quantity  int
	UnitPrice decimal.Decimal
	// ServiceName se completa solo en lecturas (join con el catálogo).
	ServiceName string
}

// Subtotal precio unitario por cantidad.
func (l OrderServiceLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderPartLine línea de pieza de una orden; la cantidad mueve el inventario.
type OrderPartLine struct {
	OrderID   string
	PartID    string
	Quantity  int
	UnitPrice decimal.Decimal
	// PartName se completa solo en lecturas (join con piezas).
	PartName string
}

// Subtotal precio unitario por cantidad.
func (l OrderPartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ServiceOrderDetail orden con sus líneas resueltas.
type ServiceOrderDetail struct {
	Order        *ServiceOrder
	ServiceLines []OrderServiceLine
	PartLines    []OrderPartLine
}
