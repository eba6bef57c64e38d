package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Taller-api/internal/application/events"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/inventory"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// MovementRecord movimiento aplicado junto con el umbral mínimo de la pieza.
type MovementRecord struct {
	*entity.InventoryMovement
	MinQuantity int
}

// BelowMinimum la existencia resultante quedó por debajo del umbral.
func (r MovementRecord) BelowMinimum() bool {
	return r.QuantityAfter < r.MinQuantity
}

// Ledger dueño de las existencias de piezas y de su historial de movimientos.
// Opera siempre sobre la unidad de trabajo del llamador; nunca abre transacciones propias.
type Ledger struct {
	now func() time.Time
}

// NewLedger construye el ledger.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// Apply aplica un único delta. Un delta en cero no genera movimiento (devuelve nil).
func (l *Ledger) Apply(ctx context.Context, uow repository.UnitOfWork, delta inventory.Delta) (*MovementRecord, error) {
	records, err := l.ApplyBatch(ctx, uow, []inventory.Delta{delta})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// ApplyBatch aplica los deltas como una sola unidad.
// Bloquea las filas en orden ascendente de PartID (SELECT FOR UPDATE), valida todos los deltas
// y solo entonces escribe: si alguno deja existencia negativa o fuera de MaxStock no se modifica ninguna pieza.
func (l *Ledger) ApplyBatch(ctx context.Context, uow repository.UnitOfWork, deltas []inventory.Delta) ([]MovementRecord, error) {
	normalized := inventory.Normalize(deltas)
	if len(normalized) == 0 {
		return nil, nil
	}

	locked := make([]*entity.Part, len(normalized))
	for i, d := range normalized {
		part, err := uow.Parts.GetForUpdate(ctx, d.PartID)
		if err != nil {
			return nil, err
		}
		if part == nil {
			return nil, domain.NewNotFound("part", d.PartID)
		}
		if d.Quantity > inventory.MaxStock || d.Quantity < -inventory.MaxStock {
			return nil, domain.NewValidation("quantity",
				fmt.Sprintf("delta %d para la pieza %s fuera de rango", d.Quantity, d.PartID))
		}
		if d.Quantity < -part.Quantity {
			return nil, &domain.InsufficientStockError{
				PartID:    d.PartID,
				Available: part.Quantity,
				Requested: -d.Quantity,
			}
		}
		if d.Quantity > inventory.MaxStock-part.Quantity {
			return nil, domain.NewValidation("quantity",
				fmt.Sprintf("la existencia de la pieza %s superaría el máximo %d", d.PartID, inventory.MaxStock))
		}
		locked[i] = part
	}

	now := l.now()
	records := make([]MovementRecord, 0, len(normalized))
	for i, d := range normalized {
		part := locked[i]
		before := part.Quantity
		after := before + d.Quantity
		if err := uow.Parts.UpdateQuantity(ctx, part.ID, after); err != nil {
			return nil, err
		}
		mov := &entity.InventoryMovement{
			ID:             uuid.New().String(),
			PartID:         part.ID,
			OrderID:        d.OrderID,
			Type:           d.MovementType(),
			Quantity:       d.Quantity,
			QuantityBefore: before,
			QuantityAfter:  after,
			Reason:         d.Reason,
			CreatedBy:      d.ActorID,
			CreatedAt:      now,
		}
		if err := uow.Movements.Create(ctx, mov); err != nil {
			return nil, fmt.Errorf("registrar movimiento de %s: %w", part.ID, err)
		}
		part.Quantity = after
		records = append(records, MovementRecord{InventoryMovement: mov, MinQuantity: part.MinQuantity})
	}
	return records, nil
}

// LowStockEvents eventos part.low_stock para los movimientos que dejaron la pieza bajo el mínimo.
func LowStockEvents(records []MovementRecord) []events.Event {
	var out []events.Event
	for _, r := range records {
		if !r.BelowMinimum() {
			continue
		}
		out = append(out, events.Event{
			Type:       events.TypePartLowStock,
			Key:        r.PartID,
			OccurredAt: r.CreatedAt,
			Payload: events.LowStockPayload{
				PartID:      r.PartID,
				Quantity:    r.QuantityAfter,
				MinQuantity: r.MinQuantity,
			},
		})
	}
	return out
}
