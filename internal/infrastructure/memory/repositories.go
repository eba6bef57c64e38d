package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
)

type partRepo struct{ st *state }

func (r partRepo) GetByID(_ context.Context, id string) (*entity.Part, error) {
	p, ok := r.st.parts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r partRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Part, error) {
	out := make(map[string]*entity.Part, len(ids))
	for _, id := range ids {
		if p, ok := r.st.parts[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r partRepo) GetForUpdate(ctx context.Context, id string) (*entity.Part, error) {
	return r.GetByID(ctx, id)
}

func (r partRepo) UpdateQuantity(_ context.Context, id string, quantity int) error {
	p, ok := r.st.parts[id]
	if !ok {
		return fmt.Errorf("pieza %s inexistente", id)
	}
	if quantity < 0 {
		return fmt.Errorf("pieza %s: cantidad negativa %d", id, quantity)
	}
	p.Quantity = quantity
	p.UpdatedAt = time.Now()
	r.st.parts[id] = p
	return nil
}

func (r partRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	p, ok := r.st.parts[id]
	if !ok {
		return fmt.Errorf("pieza %s inexistente", id)
	}
	p.UnitCost = cost
	p.UpdatedAt = time.Now()
	r.st.parts[id] = p
	return nil
}

func (r partRepo) ListBelowMinimum(_ context.Context, limit, offset int) ([]*entity.Part, error) {
	var below []entity.Part
	for _, p := range r.st.parts {
		if p.BelowMinimum() {
			below = append(below, p)
		}
	}
	slices.SortFunc(below, func(a, b entity.Part) int {
		da, db := a.MinQuantity-a.Quantity, b.MinQuantity-b.Quantity
		if da != db {
			return cmp.Compare(db, da)
		}
		return cmp.Compare(a.ID, b.ID)
	})
	out := make([]*entity.Part, 0, len(below))
	for i := range page(len(below), limit, offset) {
		out = append(out, &below[i])
	}
	return out, nil
}

type movementRepo struct{ st *state }

func (r movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.st.movements = append(r.st.movements, *m)
	return nil
}

func (r movementRepo) ListByPart(_ context.Context, partID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	var matched []entity.InventoryMovement
	for _, m := range r.st.movements {
		if m.PartID != partID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		matched = append(matched, m)
	}
	slices.Reverse(matched)
	out := make([]*entity.InventoryMovement, 0, len(matched))
	for i := range page(len(matched), limit, offset) {
		out = append(out, &matched[i])
	}
	return out, nil
}

func (r movementRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.st.movements {
		if m.OrderID != nil && *m.OrderID == orderID {
			mov := m
			out = append(out, &mov)
		}
	}
	return out, nil
}

type catalogRepo struct{ st *state }

func (r catalogRepo) GetCustomer(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := r.st.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r catalogRepo) GetVehicle(_ context.Context, id string) (*entity.Vehicle, error) {
	v, ok := r.st.vehicles[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r catalogRepo) GetMechanic(_ context.Context, id string) (*entity.Mechanic, error) {
	m, ok := r.st.mechanics[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r catalogRepo) LockMechanic(ctx context.Context, id string) (*entity.Mechanic, error) {
	return r.GetMechanic(ctx, id)
}

func (r catalogRepo) GetServices(_ context.Context, ids []string) (map[string]*entity.Service, error) {
	out := make(map[string]*entity.Service, len(ids))
	for _, id := range ids {
		if s, ok := r.st.services[id]; ok {
			out[id] = &s
		}
	}
	return out, nil
}

type orderRepo struct{ st *state }

func (r orderRepo) Create(_ context.Context, o *entity.ServiceOrder) error {
	if _, ok := r.st.orders[o.ID]; ok {
		return fmt.Errorf("orden %s duplicada", o.ID)
	}
	r.st.orders[o.ID] = *o
	return nil
}

func (r orderRepo) Update(_ context.Context, o *entity.ServiceOrder) error {
	if _, ok := r.st.orders[o.ID]; !ok {
		return fmt.Errorf("orden %s inexistente", o.ID)
	}
	r.st.orders[o.ID] = *o
	return nil
}

func (r orderRepo) Delete(_ context.Context, id string) error {
	delete(r.st.orders, id)
	delete(r.st.serviceLines, id)
	delete(r.st.partLines, id)
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.ServiceOrder, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.GetByID(ctx, id)
}

func (r orderRepo) GetDetail(ctx context.Context, id string) (*entity.ServiceOrderDetail, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	services, _ := r.ListServiceLines(ctx, id)
	parts, _ := r.ListPartLines(ctx, id)
	return &entity.ServiceOrderDetail{Order: o, ServiceLines: services, PartLines: parts}, nil
}

func (r orderRepo) ListServiceLines(_ context.Context, orderID string) ([]entity.OrderServiceLine, error) {
	lines := slices.Collect(maps.Values(r.st.serviceLines[orderID]))
	slices.SortFunc(lines, func(a, b entity.OrderServiceLine) int { return cmp.Compare(a.ServiceID, b.ServiceID) })
	for i := range lines {
		lines[i].ServiceName = r.st.services[lines[i].ServiceID].Name
	}
	return lines, nil
}

func (r orderRepo) InsertServiceLine(_ context.Context, l entity.OrderServiceLine) error {
	if _, ok := r.st.orders[l.OrderID]; !ok {
		return fmt.Errorf("orden %s inexistente", l.OrderID)
	}
	lines := r.st.serviceLines[l.OrderID]
	if lines == nil {
		lines = map[string]entity.OrderServiceLine{}
		r.st.serviceLines[l.OrderID] = lines
	}
	if _, ok := lines[l.ServiceID]; ok {
		return fmt.Errorf("línea de servicio %s duplicada", l.ServiceID)
	}
	l.ServiceName = ""
	lines[l.ServiceID] = l
	return nil
}

func (r orderRepo) UpdateServiceLine(_ context.Context, l entity.OrderServiceLine) error {
	lines := r.st.serviceLines[l.OrderID]
	if _, ok := lines[l.ServiceID]; !ok {
		return fmt.Errorf("línea de servicio %s inexistente", l.ServiceID)
	}
	l.ServiceName = ""
	lines[l.ServiceID] = l
	return nil
}

func (r orderRepo) DeleteServiceLine(_ context.Context, orderID, serviceID string) error {
	delete(r.st.serviceLines[orderID], serviceID)
	return nil
}

func (r orderRepo) ListPartLines(_ context.Context, orderID string) ([]entity.OrderPartLine, error) {
	lines := slices.Collect(maps.Values(r.st.partLines[orderID]))
	slices.SortFunc(lines, func(a, b entity.OrderPartLine) int { return cmp.Compare(a.PartID, b.PartID) })
	for i := range lines {
		lines[i].PartName = r.st.parts[lines[i].PartID].Name
	}
	return lines, nil
}

func (r orderRepo) InsertPartLine(_ context.Context, l entity.OrderPartLine) error {
	if _, ok := r.st.orders[l.OrderID]; !ok {
		return fmt.Errorf("orden %s inexistente", l.OrderID)
	}
	lines := r.st.partLines[l.OrderID]
	if lines == nil {
		lines = map[string]entity.OrderPartLine{}
		r.st.partLines[l.OrderID] = lines
	}
	if _, ok := lines[l.PartID]; ok {
		return fmt.Errorf("línea de pieza %s duplicada", l.PartID)
	}
	l.PartName = ""
	lines[l.PartID] = l
	return nil
}

func (r orderRepo) UpdatePartLine(_ context.Context, l entity.OrderPartLine) error {
	lines := r.st.partLines[l.OrderID]
	if _, ok := lines[l.PartID]; !ok {
		return fmt.Errorf("línea de pieza %s inexistente", l.PartID)
	}
	l.PartName = ""
	lines[l.PartID] = l
	return nil
}

func (r orderRepo) DeletePartLine(_ context.Context, orderID, partID string) error {
	delete(r.st.partLines[orderID], partID)
	return nil
}

func (r orderRepo) CountByMechanicAndStatus(_ context.Context, mechanicID, status, excludeOrderID string) (int, error) {
	n := 0
	for _, o := range r.st.orders {
		if o.ID == excludeOrderID || o.MechanicID == nil {
			continue
		}
		if *o.MechanicID == mechanicID && o.Status == status {
			n++
		}
	}
	return n, nil
}

// page rango [offset, offset+limit) acotado a n; limit <= 0 sin límite.
func page(n, limit, offset int) func(yield func(int) bool) {
	return func(yield func(int) bool) {
		if offset < 0 {
			offset = 0
		}
		end := n
		if limit > 0 && offset+limit < n {
			end = offset + limit
		}
		for i := offset; i < end; i++ {
			if !yield(i) {
				return
			}
		}
	}
}
