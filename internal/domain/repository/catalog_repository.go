package repository

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// CatalogRepository consultas de existencia sobre entidades administradas por el CRUD
// (clientes, vehículos, mecánicos, servicios). Todas devuelven nil, nil si no existe.
type CatalogRepository interface {
	GetCustomer(ctx context.Context, id string) (*entity.Customer, error)
	GetVehicle(ctx context.Context, id string) (*entity.Vehicle, error)
	GetMechanic(ctx context.Context, id string) (*entity.Mechanic, error)
	// LockMechanic bloquea la fila del mecánico (SELECT FOR UPDATE) para serializar
	// asignaciones concurrentes al estado en proceso.
	LockMechanic(ctx context.Context, id string) (*entity.Mechanic, error)
	GetServices(ctx context.Context, ids []string) (map[string]*entity.Service, error)
}
