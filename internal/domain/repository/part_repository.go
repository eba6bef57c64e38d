package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// PartRepository puerto de persistencia para piezas.
// La cantidad solo se modifica desde el Ledger (UpdateQuantity dentro de una transacción).
type PartRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Part, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Part, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Part, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
	// ListBelowMinimum piezas con existencia por debajo del umbral mínimo, mayor déficit primero.
	ListBelowMinimum(ctx context.Context, limit, offset int) ([]*entity.Part, error)
}
