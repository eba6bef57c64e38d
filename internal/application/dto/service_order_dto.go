package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceLineRequest línea de servicio; unit_price vacío toma el precio estándar del servicio.
type ServiceLineRequest struct {
	ServiceID string           `json:"service_id"`
	Quantity  *int             `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// PartLineRequest línea de pieza; unit_price vacío toma el precio de venta de la pieza.
type PartLineRequest struct {
	PartID    string           `json:"part_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateServiceOrderRequest body para POST /api/service-orders. Fechas en formato 2006-01-02.
type CreateServiceOrderRequest struct {
	CustomerID    string               `json:"customer_id"`
	VehicleID     string               `json:"vehicle_id"`
	MechanicID    *string              `json:"mechanic_id,omitempty"`
	OpenedAt      string               `json:"opened_at"`
	ClosedAt      *string              `json:"closed_at,omitempty"`
	Status        string               `json:"status,omitempty"`
	Discount      *decimal.Decimal     `json:"discount,omitempty"`
	PaymentMethod *string              `json:"payment_method,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	ServiceLines  []ServiceLineRequest `json:"service_lines"`
	PartLines     []PartLineRequest    `json:"part_lines"`
}

// UpdateServiceOrderRequest body para PATCH /api/service-orders/:id.
// Campos ausentes no cambian; service_lines/part_lines presentes reemplazan el conjunto completo.
// mechanic_id, closed_at y payment_method en "" se limpian.
type UpdateServiceOrderRequest struct {
	CustomerID    *string               `json:"customer_id,omitempty"`
	VehicleID     *string               `json:"vehicle_id,omitempty"`
	MechanicID    *string               `json:"mechanic_id,omitempty"`
	OpenedAt      *string               `json:"opened_at,omitempty"`
	ClosedAt      *string               `json:"closed_at,omitempty"`
	Status        *string               `json:"status,omitempty"`
	Discount      *decimal.Decimal      `json:"discount,omitempty"`
	PaymentMethod *string               `json:"payment_method,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
	ServiceLines  *[]ServiceLineRequest `json:"service_lines,omitempty"`
	PartLines     *[]PartLineRequest    `json:"part_lines,omitempty"`
}

// ServiceLineResponse línea de servicio con nombre resuelto.
type ServiceLineResponse struct {
	ServiceID   string          `json:"service_id"`
	ServiceName string          `json:"service_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PartLineResponse línea de pieza con nombre resuelto.
type PartLineResponse struct {
	PartID    string          `json:"part_id"`
	PartName  string          `json:"part_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ServiceOrderResponse orden persistida con total calculado y líneas.
type ServiceOrderResponse struct {
	ID            string                `json:"id"`
	CustomerID    string                `json:"customer_id"`
	VehicleID     string                `json:"vehicle_id"`
	MechanicID    *string               `json:"mechanic_id"`
	OpenedAt      string                `json:"opened_at"`
	ClosedAt      *string               `json:"closed_at"`
	Status        string                `json:"status"`
	PaymentMethod *string               `json:"payment_method"`
	Discount      decimal.Decimal       `json:"discount"`
	Total         decimal.Decimal       `json:"total"`
	Notes         string                `json:"notes"`
	ServiceLines  []ServiceLineResponse `json:"service_lines"`
	PartLines     []PartLineResponse    `json:"part_lines"`
	UpdatedAt     time.Time             `json:"updated_at"`
}
