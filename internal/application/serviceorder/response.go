package serviceorder

import (
	"context"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

// CreateFromRequest adapta el body HTTP, crea la orden y devuelve su representación.
func (c *Coordinator) CreateFromRequest(ctx context.Context, actorID string, in dto.CreateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	cmd, err := NewCreateCommand(actorID, in)
	if err != nil {
		return nil, err
	}
	detail, err := c.Create(ctx, cmd)
	if err != nil {
		return nil, err
	}
	out := ToResponse(detail)
	return &out, nil
}

// UpdateFromRequest adapta el body HTTP y actualiza la orden.
func (c *Coordinator) UpdateFromRequest(ctx context.Context, actorID, orderID string, in dto.UpdateServiceOrderRequest) (*dto.ServiceOrderResponse, error) {
	cmd, err := NewUpdateCommand(actorID, orderID, in)
	if err != nil {
		return nil, err
	}
	detail, err := c.Update(ctx, cmd)
	if err != nil {
		return nil, err
	}
	out := ToResponse(detail)
	return &out, nil
}

// GetResponse lectura de la orden para la frontera HTTP.
func (c *Coordinator) GetResponse(ctx context.Context, orderID string) (*dto.ServiceOrderResponse, error) {
	detail, err := c.Get(ctx, dto.NormalizeID(orderID))
	if err != nil {
		return nil, err
	}
	out := ToResponse(detail)
	return &out, nil
}

// CancelByID cancela la orden indicada por la frontera HTTP.
func (c *Coordinator) CancelByID(ctx context.Context, orderID, actorID string) error {
	return c.Cancel(ctx, dto.NormalizeID(orderID), actorID)
}

// ToResponse convierte el detalle de la orden a su DTO.
func ToResponse(d *entity.ServiceOrderDetail) dto.ServiceOrderResponse {
	o := d.Order
	out := dto.ServiceOrderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		VehicleID:     o.VehicleID,
		MechanicID:    o.MechanicID,
		OpenedAt:      o.OpenedAt.Format(DateLayout),
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Discount:      o.Discount,
		Total:         o.Total,
		Notes:         o.Notes,
		ServiceLines:  make([]dto.ServiceLineResponse, 0, len(d.ServiceLines)),
		PartLines:     make([]dto.PartLineResponse, 0, len(d.PartLines)),
		UpdatedAt:     o.UpdatedAt,
	}
	if o.ClosedAt != nil {
		closed := o.ClosedAt.Format(DateLayout)
		out.ClosedAt = &closed
	}
	for _, l := range d.ServiceLines {
		out.ServiceLines = append(out.ServiceLines, dto.ServiceLineResponse{
			ServiceID:   l.ServiceID,
			ServiceName: l.ServiceName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal(),
		})
	}
	for _, l := range d.PartLines {
		out.PartLines = append(out.PartLines, dto.PartLineResponse{
			PartID:    l.PartID,
			PartName:  l.PartName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return out
}
