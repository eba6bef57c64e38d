package serviceorder

import (
	"github.com/samber/lo"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/inventory"
)

// PartChange cambio sobre una línea de pieza y su efecto con signo en existencias.
type PartChange struct {
	Old   *entity.OrderPartLine // nil en inserciones
	New   *entity.OrderPartLine // nil en eliminaciones
	Delta int
}

func (c PartChange) partID() string {
	if c.New != nil {
		return c.New.PartID
	}
	return c.Old.PartID
}

// PartPlan plan de reconciliación de líneas de pieza; los tres conjuntos son disjuntos por PartID.
type PartPlan struct {
	Insert []PartChange
	Update []PartChange
	Delete []PartChange
}

// IsEmpty no hay nada que persistir.
func (p PartPlan) IsEmpty() bool {
	return len(p.Insert) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// StockDeltas deltas de inventario del plan (omite cambios solo de precio).
func (p PartPlan) StockDeltas(orderID, actorID, reason string) []inventory.Delta {
	var out []inventory.Delta
	for _, set := range [][]PartChange{p.Insert, p.Update, p.Delete} {
		for _, c := range set {
			if c.Delta == 0 {
				continue
			}
			partID := c.partID()
			out = append(out, inventory.Delta{
				PartID:   partID,
				Quantity: c.Delta,
				OrderID:  lo.ToPtr(orderID),
				Reason:   reason,
				ActorID:  actorID,
			})
		}
	}
	return out
}

// ReconcileParts compara las líneas persistidas con las deseadas.
// Inserción: delta = −cantidad. Actualización: delta = −(nueva − anterior). Eliminación: delta = +anterior.
// No toca el inventario: el coordinador aplica los deltas.
func ReconcileParts(current, desired []entity.OrderPartLine) PartPlan {
	currentByID := lo.KeyBy(current, func(l entity.OrderPartLine) string { return l.PartID })
	desiredByID := lo.KeyBy(desired, func(l entity.OrderPartLine) string { return l.PartID })

	var plan PartPlan
	for i := range desired {
		want := desired[i]
		have, ok := currentByID[want.PartID]
		if !ok {
			plan.Insert = append(plan.Insert, PartChange{New: &want, Delta: -want.Quantity})
			continue
		}
		if have.Quantity == want.Quantity && have.UnitPrice.Equal(want.UnitPrice) {
			continue
		}
		plan.Update = append(plan.Update, PartChange{
			Old:   &have,
			New:   &want,
			Delta: -(want.Quantity - have.Quantity),
		})
	}
	for i := range current {
		have := current[i]
		if _, ok := desiredByID[have.PartID]; ok {
			continue
		}
		plan.Delete = append(plan.Delete, PartChange{Old: &have, Delta: have.Quantity})
	}
	return plan
}

// ServicePlan plan de reconciliación de líneas de servicio (sin efecto en inventario).
type ServicePlan struct {
	Insert []entity.OrderServiceLine
	Update []entity.OrderServiceLine
	Delete []entity.OrderServiceLine
}

// IsEmpty no hay nada que persistir.
func (p ServicePlan) IsEmpty() bool {
	return len(p.Insert) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// ReconcileServices mismo criterio que ReconcileParts, por ServiceID.
func ReconcileServices(current, desired []entity.OrderServiceLine) ServicePlan {
	currentByID := lo.KeyBy(current, func(l entity.OrderServiceLine) string { return l.ServiceID })
	desiredByID := lo.KeyBy(desired, func(l entity.OrderServiceLine) string { return l.ServiceID })

	var plan ServicePlan
	for _, want := range desired {
		have, ok := currentByID[want.ServiceID]
		switch {
		case !ok:
			plan.Insert = append(plan.Insert, want)
		case have.Quantity != want.Quantity || !have.UnitPrice.Equal(want.UnitPrice):
			plan.Update = append(plan.Update, want)
		}
	}
	for _, have := range current {
		if _, ok := desiredByID[have.ServiceID]; !ok {
			plan.Delete = append(plan.Delete, have)
		}
	}
	return plan
}
