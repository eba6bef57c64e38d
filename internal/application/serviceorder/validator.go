package serviceorder

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
	rules "github.com/jhoicas/Taller-api/internal/domain/serviceorder"
)

// DefaultMaxLineQuantity cota por defecto de la cantidad de una línea.
const DefaultMaxLineQuantity = 100_000

// Validator reglas de negocio de la orden. Cada chequeo devuelve su propio tipo de error.
type Validator struct {
	statuses        rules.StatusSet
	maxAmount       decimal.Decimal
	maxLineQuantity int
}

// NewValidator construye el validador; cotas <= 0 usan los valores por defecto
// y montos sobre rules.AmountCeiling se recortan.
func NewValidator(statuses rules.StatusSet, maxAmount decimal.Decimal, maxLineQuantity int) *Validator {
	if !maxAmount.IsPositive() {
		maxAmount = rules.DefaultMaxAmount
	}
	if maxAmount.GreaterThan(rules.AmountCeiling) {
		maxAmount = rules.AmountCeiling
	}
	if maxLineQuantity <= 0 {
		maxLineQuantity = DefaultMaxLineQuantity
	}
	return &Validator{statuses: statuses, maxAmount: maxAmount, maxLineQuantity: maxLineQuantity}
}

// ValidateDates closedAt >= openedAt cuando ambas existen.
func (v *Validator) ValidateDates(openedAt time.Time, closedAt *time.Time) error {
	if closedAt != nil && closedAt.Before(openedAt) {
		return domain.ErrInvalidDateOrder
	}
	return nil
}

// ValidatePayment los estados de cierre exigen forma de pago.
func (v *Validator) ValidatePayment(status string, paymentMethod *string) error {
	if v.statuses.RequiresPayment(status) && (paymentMethod == nil || *paymentMethod == "") {
		return domain.ErrPaymentMethodRequired
	}
	return nil
}

// ValidateStatus etiqueta conocida y, si from no es vacío, transición permitida.
func (v *Validator) ValidateStatus(from, to string) error {
	if !v.statuses.Known(to) {
		return domain.NewValidation("status", fmt.Sprintf("estado desconocido %q", to))
	}
	if from != "" && !v.statuses.CanTransition(from, to) {
		return domain.NewValidation("status", fmt.Sprintf("transición no permitida de %s a %s", from, to))
	}
	return nil
}

// ValidateReferences cliente, vehículo (del cliente) y mecánico existentes.
func (v *Validator) ValidateReferences(ctx context.Context, catalog repository.CatalogRepository, customerID, vehicleID string, mechanicID *string) error {
	customer, err := catalog.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.NewNotFound("customer", customerID)
	}
	vehicle, err := catalog.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	if vehicle == nil {
		return domain.NewNotFound("vehicle", vehicleID)
	}
	if vehicle.CustomerID != customerID {
		return domain.NewValidation("vehicle_id", "el vehículo no pertenece al cliente")
	}
	if mechanicID != nil {
		mechanic, err := catalog.GetMechanic(ctx, *mechanicID)
		if err != nil {
			return err
		}
		if mechanic == nil {
			return domain.NewNotFound("mechanic", *mechanicID)
		}
	}
	return nil
}

// CheckMechanicAvailable si la orden queda en proceso con mecánico, ninguna otra orden de ese
// mecánico puede estar en proceso. Bloquea la fila del mecánico hasta el fin de la transacción.
func (v *Validator) CheckMechanicAvailable(ctx context.Context, uow repository.UnitOfWork, orderID string, mechanicID *string, status string) error {
	if mechanicID == nil || !v.statuses.IsInProgress(status) {
		return nil
	}
	mechanic, err := uow.Catalog.LockMechanic(ctx, *mechanicID)
	if err != nil {
		return err
	}
	if mechanic == nil {
		return domain.NewNotFound("mechanic", *mechanicID)
	}
	n, err := uow.Orders.CountByMechanicAndStatus(ctx, *mechanicID, status, orderID)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrMechanicBusy
	}
	return nil
}

// ValidateServiceShape ids no vacíos ni repetidos, cantidades y precios dentro de cotas.
func (v *Validator) ValidateServiceShape(lines []ServiceLineInput) error {
	seen := make(map[string]bool, len(lines))
	for i, l := range lines {
		field := fmt.Sprintf("service_lines[%d]", i)
		if l.ServiceID == "" {
			return domain.NewValidation(field+".service_id", "requerido")
		}
		if seen[l.ServiceID] {
			return domain.NewValidation(field+".service_id", "servicio repetido "+l.ServiceID)
		}
		seen[l.ServiceID] = true
		if err := v.checkQuantity(field, l.Quantity); err != nil {
			return err
		}
		if err := v.checkPrice(field, l.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePartShape mismas reglas que ValidateServiceShape, por pieza.
func (v *Validator) ValidatePartShape(lines []PartLineInput) error {
	seen := make(map[string]bool, len(lines))
	for i, l := range lines {
		field := fmt.Sprintf("part_lines[%d]", i)
		if l.PartID == "" {
			return domain.NewValidation(field+".part_id", "requerido")
		}
		if seen[l.PartID] {
			return domain.NewValidation(field+".part_id", "pieza repetida "+l.PartID)
		}
		seen[l.PartID] = true
		if err := v.checkQuantity(field, l.Quantity); err != nil {
			return err
		}
		if err := v.checkPrice(field, l.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkQuantity(field string, qty int) error {
	if qty < 1 || qty > v.maxLineQuantity {
		return domain.NewValidation(field+".quantity", fmt.Sprintf("debe estar entre 1 y %d", v.maxLineQuantity))
	}
	return nil
}

func (v *Validator) checkPrice(field string, price *decimal.Decimal) error {
	if price == nil {
		return nil
	}
	if price.IsNegative() || price.GreaterThan(v.maxAmount) {
		return domain.NewValidation(field+".unit_price", "fuera de rango [0, "+v.maxAmount.String()+"]")
	}
	return nil
}

// ResolveServiceLines verifica que los servicios existan y completa precios por defecto.
// Un servicio inactivo solo se acepta si ya estaba en la orden.
func (v *Validator) ResolveServiceLines(ctx context.Context, catalog repository.CatalogRepository, orderID string, in []ServiceLineInput, current []entity.OrderServiceLine) ([]entity.OrderServiceLine, error) {
	if len(in) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(in))
	for _, l := range in {
		ids = append(ids, l.ServiceID)
	}
	services, err := catalog.GetServices(ctx, ids)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(current))
	for _, l := range current {
		existing[l.ServiceID] = true
	}
	out := make([]entity.OrderServiceLine, 0, len(in))
	for _, l := range in {
		svc, ok := services[l.ServiceID]
		if !ok || svc == nil {
			return nil, domain.NewNotFound("service", l.ServiceID)
		}
		if !svc.Active && !existing[l.ServiceID] {
			return nil, domain.NewValidation("service_id", "el servicio "+l.ServiceID+" está inactivo")
		}
		price := svc.Price
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		out = append(out, entity.OrderServiceLine{
			OrderID:     orderID,
			ServiceID:   l.ServiceID,
			Quantity:    l.Quantity,
			UnitPrice:   price,
			ServiceName: svc.Name,
		})
	}
	return out, nil
}

// ResolvePartLines verifica que las piezas existan y completa precios por defecto.
func (v *Validator) ResolvePartLines(ctx context.Context, parts repository.PartRepository, orderID string, in []PartLineInput) ([]entity.OrderPartLine, error) {
	if len(in) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(in))
	for _, l := range in {
		ids = append(ids, l.PartID)
	}
	found, err := parts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]entity.OrderPartLine, 0, len(in))
	for _, l := range in {
		part, ok := found[l.PartID]
		if !ok || part == nil {
			return nil, domain.NewNotFound("part", l.PartID)
		}
		price := part.SalePrice
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		out = append(out, entity.OrderPartLine{
			OrderID:   orderID,
			PartID:    l.PartID,
			Quantity:  l.Quantity,
			UnitPrice: price,
			PartName:  part.Name,
		})
	}
	return out, nil
}
