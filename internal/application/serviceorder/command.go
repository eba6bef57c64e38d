package serviceorder

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/application/dto"
	"github.com/jhoicas/Taller-api/internal/domain"
)

// DateLayout formato de fechas de apertura y cierre en la frontera HTTP.
const DateLayout = "2006-01-02"

// ServiceLineInput línea de servicio deseada. UnitPrice nil toma el precio del catálogo.
type ServiceLineInput struct {
	ServiceID string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// PartLineInput línea de pieza deseada. UnitPrice nil toma el precio de venta de la pieza.
type PartLineInput struct {
	PartID    string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// CreateCommand datos tipados para crear una orden.
type CreateCommand struct {
	ActorID       string
	CustomerID    string
	VehicleID     string
	MechanicID    *string
	OpenedAt      time.Time
	ClosedAt      *time.Time
	Status        string // vacío = estado de espera
	Discount      decimal.Decimal
	PaymentMethod *string
	Notes         string
	ServiceLines  []ServiceLineInput
	PartLines     []PartLineInput
}

// UpdateCommand cambios parciales sobre una orden existente.
// Los punteros nil no cambian el campo. Las listas no nil reemplazan el conjunto completo.
type UpdateCommand struct {
	OrderID            string
	ActorID            string
	CustomerID         *string
	VehicleID          *string
	MechanicID         *string
	ClearMechanic      bool
	OpenedAt           *time.Time
	ClosedAt           *time.Time
	ClearClosedAt      bool
	Status             *string
	Discount           *decimal.Decimal
	PaymentMethod      *string
	ClearPaymentMethod bool
	Notes              *string
	ServiceLines       []ServiceLineInput
	ReplaceServices    bool
	PartLines          []PartLineInput
	ReplaceParts       bool
}

// NewCreateCommand convierte el body HTTP en un CreateCommand.
func NewCreateCommand(actorID string, in dto.CreateServiceOrderRequest) (CreateCommand, error) {
	cmd := CreateCommand{
		ActorID:    actorID,
		CustomerID: dto.NormalizeID(in.CustomerID),
		VehicleID:  dto.NormalizeID(in.VehicleID),
		Status:     strings.TrimSpace(in.Status),
		Notes:      in.Notes,
	}
	if cmd.CustomerID == "" {
		return cmd, domain.NewValidation("customer_id", "requerido")
	}
	if cmd.VehicleID == "" {
		return cmd, domain.NewValidation("vehicle_id", "requerido")
	}
	cmd.MechanicID = idOrNil(in.MechanicID)
	if strings.TrimSpace(in.OpenedAt) != "" {
		opened, err := parseDate("opened_at", in.OpenedAt)
		if err != nil {
			return cmd, err
		}
		cmd.OpenedAt = opened
	}
	if c := trimmedOrNil(in.ClosedAt); c != nil {
		closed, err := parseDate("closed_at", *c)
		if err != nil {
			return cmd, err
		}
		cmd.ClosedAt = &closed
	}
	if in.Discount != nil {
		cmd.Discount = *in.Discount
	}
	cmd.PaymentMethod = trimmedOrNil(in.PaymentMethod)
	cmd.ServiceLines = serviceInputs(in.ServiceLines)
	cmd.PartLines = partInputs(in.PartLines)
	return cmd, nil
}

// NewUpdateCommand convierte el body HTTP en un UpdateCommand.
func NewUpdateCommand(actorID, orderID string, in dto.UpdateServiceOrderRequest) (UpdateCommand, error) {
	cmd := UpdateCommand{
		OrderID:  dto.NormalizeID(orderID),
		ActorID:  actorID,
		Discount: in.Discount,
		Notes:    in.Notes,
	}
	if in.CustomerID != nil {
		v := dto.NormalizeID(*in.CustomerID)
		if v == "" {
			return cmd, domain.NewValidation("customer_id", "no puede ser vacío")
		}
		cmd.CustomerID = &v
	}
	if in.VehicleID != nil {
		v := dto.NormalizeID(*in.VehicleID)
		if v == "" {
			return cmd, domain.NewValidation("vehicle_id", "no puede ser vacío")
		}
		cmd.VehicleID = &v
	}
	if in.MechanicID != nil {
		if m := idOrNil(in.MechanicID); m != nil {
			cmd.MechanicID = m
		} else {
			cmd.ClearMechanic = true
		}
	}
	if in.OpenedAt != nil {
		opened, err := parseDate("opened_at", *in.OpenedAt)
		if err != nil {
			return cmd, err
		}
		cmd.OpenedAt = &opened
	}
	if in.ClosedAt != nil {
		if c := trimmedOrNil(in.ClosedAt); c != nil {
			closed, err := parseDate("closed_at", *c)
			if err != nil {
				return cmd, err
			}
			cmd.ClosedAt = &closed
		} else {
			cmd.ClearClosedAt = true
		}
	}
	if in.Status != nil {
		s := strings.TrimSpace(*in.Status)
		if s == "" {
			return cmd, domain.NewValidation("status", "no puede ser vacío")
		}
		cmd.Status = &s
	}
	if in.PaymentMethod != nil {
		if p := trimmedOrNil(in.PaymentMethod); p != nil {
			cmd.PaymentMethod = p
		} else {
			cmd.ClearPaymentMethod = true
		}
	}
	if in.ServiceLines != nil {
		cmd.ServiceLines = serviceInputs(*in.ServiceLines)
		cmd.ReplaceServices = true
	}
	if in.PartLines != nil {
		cmd.PartLines = partInputs(*in.PartLines)
		cmd.ReplaceParts = true
	}
	return cmd, nil
}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.NewValidation(field, "fecha inválida, se espera AAAA-MM-DD")
	}
	return t.UTC(), nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func idOrNil(s *string) *string {
	v := trimmedOrNil(s)
	if v == nil {
		return nil
	}
	id := dto.NormalizeID(*v)
	return &id
}

func serviceInputs(in []dto.ServiceLineRequest) []ServiceLineInput {
	out := make([]ServiceLineInput, 0, len(in))
	for _, l := range in {
		qty := 1
		if l.Quantity != nil {
			qty = *l.Quantity
		}
		out = append(out, ServiceLineInput{
			ServiceID: dto.NormalizeID(l.ServiceID),
			Quantity:  qty,
			UnitPrice: l.UnitPrice,
		})
	}
	return out
}

func partInputs(in []dto.PartLineRequest) []PartLineInput {
	out := make([]PartLineInput, 0, len(in))
	for _, l := range in {
		out = append(out, PartLineInput{
			PartID:    dto.NormalizeID(l.PartID),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return out
}
