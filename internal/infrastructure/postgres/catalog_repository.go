package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo lecturas de clientes, vehículos, mecánicos y servicios.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// GetCustomer obtiene un cliente por ID.
func (r *CatalogRepo) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	if !isUUID(id) {
		return nil, nil
	}
	var c entity.Customer
	err := r.q.QueryRow(ctx, `SELECT id, name, email, phone, created_at FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// GetVehicle obtiene un vehículo por ID.
func (r *CatalogRepo) GetVehicle(ctx context.Context, id string) (*entity.Vehicle, error) {
	if !isUUID(id) {
		return nil, nil
	}
	var v entity.Vehicle
	err := r.q.QueryRow(ctx, `SELECT id, customer_id, plate, model FROM vehicles WHERE id = $1`, id).
		Scan(&v.ID, &v.CustomerID, &v.Plate, &v.Model)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &v, nil
}

// GetMechanic obtiene un mecánico por ID.
func (r *CatalogRepo) GetMechanic(ctx context.Context, id string) (*entity.Mechanic, error) {
	return r.getMechanic(ctx, `SELECT id, name FROM mechanics WHERE id = $1`, id)
}

// LockMechanic obtiene el mecánico y bloquea su fila hasta el fin de la transacción.
func (r *CatalogRepo) LockMechanic(ctx context.Context, id string) (*entity.Mechanic, error) {
	return r.getMechanic(ctx, `SELECT id, name FROM mechanics WHERE id = $1 FOR UPDATE`, id)
}

func (r *CatalogRepo) getMechanic(ctx context.Context, query, id string) (*entity.Mechanic, error) {
	if !isUUID(id) {
		return nil, nil
	}
	var m entity.Mechanic
	if err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mechanic: %w", err)
	}
	return &m, nil
}

// GetServices obtiene servicios indexados por el ID solicitado; los inexistentes no aparecen en el mapa.
func (r *CatalogRepo) GetServices(ctx context.Context, ids []string) (map[string]*entity.Service, error) {
	out := make(map[string]*entity.Service, len(ids))
	requested, keys := canonicalIDs(ids)
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT id, name, price, active FROM services WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		return nil, fmt.Errorf("get services: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s entity.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.Active); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out[requested[s.ID]] = &s
	}
	return out, rows.Err()
}
