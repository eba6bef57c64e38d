package repository

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// ServiceOrderRepository puerto de persistencia para órdenes de servicio y sus líneas.
type ServiceOrderRepository interface {
	Create(ctx context.Context, order *entity.ServiceOrder) error
	Update(ctx context.Context, order *entity.ServiceOrder) error
	Delete(ctx context.Context, id string) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error)
	// GetForUpdate bloquea la fila de la orden. nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error)
	// GetDetail orden con líneas y nombres de servicio/pieza. nil, nil si no existe.
	GetDetail(ctx context.Context, id string) (*entity.ServiceOrderDetail, error)

	ListServiceLines(ctx context.Context, orderID string) ([]entity.OrderServiceLine, error)
	InsertServiceLine(ctx context.Context, line entity.OrderServiceLine) error
	UpdateServiceLine(ctx context.Context, line entity.OrderServiceLine) error
	DeleteServiceLine(ctx context.Context, orderID, serviceID string) error

	ListPartLines(ctx context.Context, orderID string) ([]entity.OrderPartLine, error)
	InsertPartLine(ctx context.Context, line entity.OrderPartLine) error
	UpdatePartLine(ctx context.Context, line entity.OrderPartLine) error
	DeletePartLine(ctx context.Context, orderID, partID string) error

	// CountByMechanicAndStatus órdenes del mecánico en el estado dado, excluyendo excludeOrderID.
	CountByMechanicAndStatus(ctx context.Context, mechanicID, status, excludeOrderID string) (int, error)
}
