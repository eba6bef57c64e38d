package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.PartRepository = (*PartRepo)(nil)

const partColumns = `id, name, unit_cost, sale_price, quantity, min_quantity, created_at, updated_at`

// PartRepo implementación sobre PostgreSQL (usable con pool o tx).
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

func scanPart(row pgx.Row) (*entity.Part, error) {
	var p entity.Part
	if err := row.Scan(&p.ID, &p.Name, &p.UnitCost, &p.SalePrice, &p.Quantity, &p.MinQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene una pieza por ID.
func (r *PartRepo) GetByID(ctx context.Context, id string) (*entity.Part, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := scanPart(r.q.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return p, nil
}

// GetByIDs obtiene varias piezas indexadas por el ID solicitado; las inexistentes no aparecen en el mapa.
func (r *PartRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Part, error) {
	out := make(map[string]*entity.Part, len(ids))
	requested, keys := canonicalIDs(ids)
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+partColumns+` FROM parts WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		return nil, fmt.Errorf("get parts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		out[requested[p.ID]] = p
	}
	return out, rows.Err()
}

// GetForUpdate obtiene la pieza y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *PartRepo) GetForUpdate(ctx context.Context, id string) (*entity.Part, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := scanPart(r.q.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part for update: %w", err)
	}
	return p, nil
}

// UpdateQuantity fija la existencia de la pieza.
func (r *PartRepo) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	tag, err := r.q.Exec(ctx, `UPDATE parts SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return fmt.Errorf("update part quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update part quantity: pieza %s inexistente", id)
	}
	return nil
}

// UpdateCost fija el costo promedio ponderado de la pieza.
func (r *PartRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	if _, err := r.q.Exec(ctx, `UPDATE parts SET unit_cost = $2, updated_at = now() WHERE id = $1`, id, cost); err != nil {
		return fmt.Errorf("update part cost: %w", err)
	}
	return nil
}

// ListBelowMinimum piezas con existencia bajo el mínimo, mayor déficit primero.
func (r *PartRepo) ListBelowMinimum(ctx context.Context, limit, offset int) ([]*entity.Part, error) {
	query := `
		SELECT ` + partColumns + `
		FROM parts
		WHERE quantity < min_quantity
		ORDER BY (min_quantity - quantity) DESC, id
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list below minimum: %w", err)
	}
	defer rows.Close()
	var list []*entity.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
