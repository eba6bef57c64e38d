package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/application/events"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Taller-api/internal/domain/inventory"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
	"github.com/jhoicas/Taller-api/pkg/logger"
)

// RegisterAdjustmentUseCase registra ajustes manuales de inventario (IN, OUT, ADJUST)
// a través del Ledger, dentro de una transacción, sin orden asociada.
type RegisterAdjustmentUseCase struct {
	txRunner  TxRunner
	ledger    *Ledger
	movRepo   repository.InventoryMovementRepository
	publisher events.Publisher
	log       *logger.Logger
}

// NewRegisterAdjustmentUseCase construye el caso de uso.
func NewRegisterAdjustmentUseCase(
	txRunner TxRunner,
	ledger *Ledger,
	movRepo repository.InventoryMovementRepository,
	publisher events.Publisher,
	log *logger.Logger,
) *RegisterAdjustmentUseCase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RegisterAdjustmentUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		movRepo:   movRepo,
		publisher: publisher,
		log:       log.Component("inventory"),
	}
}

// AdjustmentInput entrada de un ajuste manual.
type AdjustmentInput struct {
	UserID   string
	PartID   string
	Type     string
	Quantity int
	UnitCost *decimal.Decimal
	Reason   string
}

func (in AdjustmentInput) validate() error {
	if strings.TrimSpace(in.PartID) == "" {
		return domain.NewValidation("part_id", "requerido")
	}
	if in.Quantity > domaininv.MaxStock || in.Quantity < -domaininv.MaxStock {
		return domain.NewValidation("quantity", fmt.Sprintf("fuera de rango [-%d, %d]", domaininv.MaxStock, domaininv.MaxStock))
	}
	switch in.Type {
	case entity.MovementTypeIN:
		if in.Quantity <= 0 {
			return domain.NewValidation("quantity", "debe ser mayor que cero")
		}
		if in.UnitCost == nil || in.UnitCost.IsNegative() {
			return domain.NewValidation("unit_cost", "obligatorio y no negativo en entradas")
		}
		if in.UnitCost.GreaterThan(domaininv.MaxUnitCost) {
			return domain.NewValidation("unit_cost", "excede el máximo permitido "+domaininv.MaxUnitCost.String())
		}
	case entity.MovementTypeOUT:
		if in.Quantity <= 0 {
			return domain.NewValidation("quantity", "debe ser mayor que cero")
		}
	case entity.MovementTypeADJUST:
		if in.Quantity == 0 {
			return domain.NewValidation("quantity", "no puede ser cero")
		}
	default:
		return domain.NewValidation("type", "debe ser IN, OUT o ADJUST")
	}
	return nil
}

// RegisterAdjustment valida, abre la transacción y aplica el delta vía Ledger.
// En entradas (IN) recalcula el costo promedio ponderado de la pieza antes de sumar existencias.
func (uc *RegisterAdjustmentUseCase) RegisterAdjustment(ctx context.Context, in AdjustmentInput) (*MovementRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "ajuste manual"
	}
	delta := domaininv.Delta{
		PartID:   dto.NormalizeID(in.PartID),
		Quantity: in.Quantity,
		Type:     in.Type,
		Reason:   reason,
		ActorID:  in.UserID,
	}
	if in.Type == entity.MovementTypeOUT {
		delta.Quantity = -in.Quantity
	}

	var record *MovementRecord
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		if in.Type == entity.MovementTypeIN {
			part, err := uow.Parts.GetForUpdate(ctx, in.PartID)
			if err != nil {
				return err
			}
			if part == nil {
				return domain.NewNotFound("part", in.PartID)
			}
			newCost := domaininv.WeightedAverageCost(part.Quantity, part.UnitCost, in.Quantity, *in.UnitCost)
			if err := uow.Parts.UpdateCost(ctx, part.ID, newCost); err != nil {
				return err
			}
		}
		rec, err := uc.ledger.Apply(ctx, uow, delta)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Part(record.PartID).Debug().
		Int("quantity", record.Quantity).
		Int("after", record.QuantityAfter).
		Msg("ajuste de inventario registrado")

	if evts := LowStockEvents([]MovementRecord{*record}); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			uc.log.Part(record.PartID).Warn().Err(err).Msg("publicar alerta de stock bajo")
		}
	}
	return record, nil
}

// RegisterAdjustmentFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterAdjustmentUseCase) RegisterAdjustmentFromRequest(ctx context.Context, userID string, in dto.RegisterAdjustmentRequest) (*dto.MovementResponse, error) {
	rec, err := uc.RegisterAdjustment(ctx, AdjustmentInput{
		UserID:   userID,
		PartID:   dto.NormalizeID(in.PartID),
		Type:     strings.ToUpper(strings.TrimSpace(in.Type)),
		Quantity: in.Quantity,
		UnitCost: in.UnitCost,
		Reason:   in.Reason,
	})
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(rec.InventoryMovement)
	return &out, nil
}

// ListByPart historial de movimientos de una pieza, más recientes primero.
func (uc *RegisterAdjustmentUseCase) ListByPart(ctx context.Context, partID string, from, to *time.Time, page dto.PageRequest) ([]dto.MovementResponse, error) {
	page.DefaultPage()
	list, err := uc.movRepo.ListByPart(ctx, dto.NormalizeID(partID), from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

// ListByOrder movimientos generados por una orden de servicio.
func (uc *RegisterAdjustmentUseCase) ListByOrder(ctx context.Context, orderID string) ([]dto.MovementResponse, error) {
	list, err := uc.movRepo.ListByOrder(ctx, dto.NormalizeID(orderID))
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

// ToMovementResponse convierte un movimiento a su DTO.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		PartID:         m.PartID,
		OrderID:        m.OrderID,
		Type:           m.Type,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

func toMovementResponses(list []*entity.InventoryMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}
