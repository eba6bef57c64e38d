package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// lockedParts repositorio de piezas que toma el mutex del store en cada llamada.
type lockedParts struct{ s *Store }

func (r lockedParts) GetByID(ctx context.Context, id string) (p *entity.Part, err error) {
	r.s.locked(func(st *state) { p, err = partRepo{st}.GetByID(ctx, id) })
	return
}

func (r lockedParts) GetByIDs(ctx context.Context, ids []string) (m map[string]*entity.Part, err error) {
	r.s.locked(func(st *state) { m, err = partRepo{st}.GetByIDs(ctx, ids) })
	return
}

func (r lockedParts) GetForUpdate(ctx context.Context, id string) (*entity.Part, error) {
	return r.GetByID(ctx, id)
}

func (r lockedParts) UpdateQuantity(ctx context.Context, id string, quantity int) (err error) {
	r.s.locked(func(st *state) { err = partRepo{st}.UpdateQuantity(ctx, id, quantity) })
	return
}

func (r lockedParts) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) (err error) {
	r.s.locked(func(st *state) { err = partRepo{st}.UpdateCost(ctx, id, cost) })
	return
}

func (r lockedParts) ListBelowMinimum(ctx context.Context, limit, offset int) (list []*entity.Part, err error) {
	r.s.locked(func(st *state) { list, err = partRepo{st}.ListBelowMinimum(ctx, limit, offset) })
	return
}

// lockedMovements repositorio de movimientos que toma el mutex del store en cada llamada.
type lockedMovements struct{ s *Store }

func (r lockedMovements) Create(ctx context.Context, m *entity.InventoryMovement) (err error) {
	r.s.locked(func(st *state) { err = movementRepo{st}.Create(ctx, m) })
	return
}

func (r lockedMovements) ListByPart(ctx context.Context, partID string, from, to *time.Time, limit, offset int) (list []*entity.InventoryMovement, err error) {
	r.s.locked(func(st *state) { list, err = movementRepo{st}.ListByPart(ctx, partID, from, to, limit, offset) })
	return
}

func (r lockedMovements) ListByOrder(ctx context.Context, orderID string) (list []*entity.InventoryMovement, err error) {
	r.s.locked(func(st *state) { list, err = movementRepo{st}.ListByOrder(ctx, orderID) })
	return
}
