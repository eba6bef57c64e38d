package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// InventoryMovementRepository puerto de persistencia para movimientos (solo inserción y lectura).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByPart(ctx context.Context, partID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.InventoryMovement, error)
}
