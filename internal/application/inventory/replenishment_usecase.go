package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

// ReplenishmentUseCase lista de reposición: piezas por debajo de su umbral mínimo.
type ReplenishmentUseCase struct {
	partRepo repository.PartRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(partRepo repository.PartRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{partRepo: partRepo}
}

// GenerateReplenishmentList devuelve las piezas bajo mínimo con la cantidad sugerida de pedido.
// IdealStock = ceil(MinQuantity * 1.5); SuggestedOrderQty = IdealStock - Quantity.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, page dto.PageRequest) ([]dto.LowStockPartDTO, error) {
	page.DefaultPage()
	parts, err := uc.partRepo.ListBelowMinimum(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockPartDTO, 0, len(parts))
	for _, p := range parts {
		ideal := (p.MinQuantity*3 + 1) / 2
		suggested := ideal - p.Quantity
		if suggested < 0 {
			suggested = 0
		}
		out = append(out, dto.LowStockPartDTO{
			PartID:             p.ID,
			Name:               p.Name,
			Quantity:           p.Quantity,
			MinQuantity:        p.MinQuantity,
			Deficit:            p.MinQuantity - p.Quantity,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           p.UnitCost,
			EstimatedOrderCost: p.UnitCost.Mul(decimal.NewFromInt(int64(suggested))).Round(2),
		})
	}
	return out, nil
}
