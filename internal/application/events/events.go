package events

import (
	"context"
	"time"
)

// Tipos de evento publicados después de confirmar la transacción.
const (
	TypeServiceOrderCreated   = "service_order.created"
	TypeServiceOrderUpdated   = "service_order.updated"
	TypeServiceOrderCancelled = "service_order.cancelled"
	TypePartLowStock          = "part.low_stock"
)

// Event evento de dominio. Key se usa como clave de partición (id de orden o de pieza).
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// ServiceOrderPayload datos de una orden en eventos de ciclo de vida.
type ServiceOrderPayload struct {
	OrderID    string  `json:"order_id"`
	Status     string  `json:"status,omitempty"`
	MechanicID *string `json:"mechanic_id,omitempty"`
	Total      string  `json:"total,omitempty"`
	Movements  int     `json:"movements"`
	ActorID    string  `json:"actor_id,omitempty"`
}

// LowStockPayload pieza que quedó por debajo de su umbral mínimo.
type LowStockPayload struct {
	PartID      string `json:"part_id"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"min_quantity"`
}

// Publisher publica eventos fuera de la transacción. Un fallo nunca revierte lo ya confirmado.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NopPublisher descarta los eventos (sin broker configurado).
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, ...Event) error { return nil }
