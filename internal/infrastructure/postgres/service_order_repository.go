package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.ServiceOrderRepository = (*ServiceOrderRepo)(nil)

var orderColumns = []string{
	"id", "customer_id", "vehicle_id", "mechanic_id", "opened_at", "closed_at", "status",
	"payment_method", "discount", "total", "notes", "created_at", "updated_at",
}

// ServiceOrderRepo órdenes de servicio y sus líneas sobre PostgreSQL (usable con pool o tx).
type ServiceOrderRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// NewServiceOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceOrderRepository(q Querier) *ServiceOrderRepo {
	return &ServiceOrderRepo{
		q:  q,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ServiceOrderRepo) exec(ctx context.Context, b sq.Sqlizer, op string) (int64, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: build: %w", op, err)
	}
	tag, err := r.q.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}

// Create inserta la cabecera de la orden.
func (r *ServiceOrderRepo) Create(ctx context.Context, o *entity.ServiceOrder) error {
	q := r.sb.Insert("service_orders").
		Columns(orderColumns...).
		Values(o.ID, o.CustomerID, o.VehicleID, o.MechanicID, o.OpenedAt, o.ClosedAt, o.Status,
			o.PaymentMethod, o.Discount, o.Total, o.Notes, o.CreatedAt, o.UpdatedAt)
	_, err := r.exec(ctx, q, "create service order")
	return err
}

// Update reescribe los campos editables de la cabecera.
func (r *ServiceOrderRepo) Update(ctx context.Context, o *entity.ServiceOrder) error {
	q := r.sb.Update("service_orders").
		SetMap(sq.Eq{
			"customer_id":    o.CustomerID,
			"vehicle_id":     o.VehicleID,
			"mechanic_id":    o.MechanicID,
			"opened_at":      o.OpenedAt,
			"closed_at":      o.ClosedAt,
			"status":         o.Status,
			"payment_method": o.PaymentMethod,
			"discount":       o.Discount,
			"total":          o.Total,
			"notes":          o.Notes,
			"updated_at":     o.UpdatedAt,
		}).
		Where(sq.Eq{"id": o.ID})
	n, err := r.exec(ctx, q, "update service order")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update service order: orden %s inexistente", o.ID)
	}
	return nil
}

// Delete elimina la orden; las líneas caen por ON DELETE CASCADE.
func (r *ServiceOrderRepo) Delete(ctx context.Context, id string) error {
	_, err := r.exec(ctx, r.sb.Delete("service_orders").Where(sq.Eq{"id": id}), "delete service order")
	return err
}

// GetByID obtiene la cabecera de la orden.
func (r *ServiceOrderRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene la cabecera y bloquea la fila.
func (r *ServiceOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *ServiceOrderRepo) get(ctx context.Context, id, suffix string) (*entity.ServiceOrder, error) {
	if !isUUID(id) {
		return nil, nil
	}
	q := r.sb.Select(orderColumns...).From("service_orders").Where(sq.Eq{"id": id})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("get service order: build: %w", err)
	}
	var o entity.ServiceOrder
	err = r.q.QueryRow(ctx, sqlStr, args...).Scan(
		&o.ID, &o.CustomerID, &o.VehicleID, &o.MechanicID, &o.OpenedAt, &o.ClosedAt, &o.Status,
		&o.PaymentMethod, &o.Discount, &o.Total, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service order: %w", err)
	}
	return &o, nil
}

// GetDetail cabecera más líneas con los nombres del catálogo.
func (r *ServiceOrderRepo) GetDetail(ctx context.Context, id string) (*entity.ServiceOrderDetail, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	services, err := r.ListServiceLines(ctx, id)
	if err != nil {
		return nil, err
	}
	parts, err := r.ListPartLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entity.ServiceOrderDetail{Order: o, ServiceLines: services, PartLines: parts}, nil
}

// ListServiceLines líneas de servicio con nombre, ordenadas por servicio.
func (r *ServiceOrderRepo) ListServiceLines(ctx context.Context, orderID string) ([]entity.OrderServiceLine, error) {
	q := r.sb.Select("l.order_id", "l.service_id", "l.quantity", "l.unit_price", "s.name").
		From("service_order_services l").
		Join("services s ON s.id = l.service_id").
		Where(sq.Eq{"l.order_id": orderID}).
		OrderBy("l.service_id")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("list service lines: build: %w", err)
	}
	rows, err := r.q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list service lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.OrderServiceLine
	for rows.Next() {
		var l entity.OrderServiceLine
		if err := rows.Scan(&l.OrderID, &l.ServiceID, &l.Quantity, &l.UnitPrice, &l.ServiceName); err != nil {
			return nil, fmt.Errorf("scan service line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// InsertServiceLine agrega una línea de servicio.
func (r *ServiceOrderRepo) InsertServiceLine(ctx context.Context, l entity.OrderServiceLine) error {
	q := r.sb.Insert("service_order_services").
		Columns("order_id", "service_id", "quantity", "unit_price").
		Values(l.OrderID, l.ServiceID, l.Quantity, l.UnitPrice)
	_, err := r.exec(ctx, q, "insert service line")
	return err
}

// UpdateServiceLine cambia cantidad y precio de una línea de servicio.
func (r *ServiceOrderRepo) UpdateServiceLine(ctx context.Context, l entity.OrderServiceLine) error {
	q := r.sb.Update("service_order_services").
		Set("quantity", l.Quantity).
		Set("unit_price", l.UnitPrice).
		Where(sq.Eq{"order_id": l.OrderID, "service_id": l.ServiceID})
	_, err := r.exec(ctx, q, "update service line")
	return err
}

// DeleteServiceLine quita una línea de servicio.
func (r *ServiceOrderRepo) DeleteServiceLine(ctx context.Context, orderID, serviceID string) error {
	q := r.sb.Delete("service_order_services").Where(sq.Eq{"order_id": orderID, "service_id": serviceID})
	_, err := r.exec(ctx, q, "delete service line")
	return err
}

// ListPartLines líneas de pieza con nombre, ordenadas por pieza.
func (r *ServiceOrderRepo) ListPartLines(ctx context.Context, orderID string) ([]entity.OrderPartLine, error) {
	q := r.sb.Select("l.order_id", "l.part_id", "l.quantity", "l.unit_price", "p.name").
		From("service_order_parts l").
		Join("parts p ON p.id = l.part_id").
		Where(sq.Eq{"l.order_id": orderID}).
		OrderBy("l.part_id")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("list part lines: build: %w", err)
	}
	rows, err := r.q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list part lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.OrderPartLine
	for rows.Next() {
		var l entity.OrderPartLine
		if err := rows.Scan(&l.OrderID, &l.PartID, &l.Quantity, &l.UnitPrice, &l.PartName); err != nil {
			return nil, fmt.Errorf("scan part line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// InsertPartLine agrega una línea de pieza.
func (r *ServiceOrderRepo) InsertPartLine(ctx context.Context, l entity.OrderPartLine) error {
	q := r.sb.Insert("service_order_parts").
		Columns("order_id", "part_id", "quantity", "unit_price").
		Values(l.OrderID, l.PartID, l.Quantity, l.UnitPrice)
	_, err := r.exec(ctx, q, "insert part line")
	return err
}

// UpdatePartLine cambia cantidad y precio de una línea de pieza.
func (r *ServiceOrderRepo) UpdatePartLine(ctx context.Context, l entity.OrderPartLine) error {
	q := r.sb.Update("service_order_parts").
		Set("quantity", l.Quantity).
		Set("unit_price", l.UnitPrice).
		Where(sq.Eq{"order_id": l.OrderID, "part_id": l.PartID})
	_, err := r.exec(ctx, q, "update part line")
	return err
}

// DeletePartLine quita una línea de pieza.
func (r *ServiceOrderRepo) DeletePartLine(ctx context.Context, orderID, partID string) error {
	q := r.sb.Delete("service_order_parts").Where(sq.Eq{"order_id": orderID, "part_id": partID})
	_, err := r.exec(ctx, q, "delete part line")
	return err
}

// CountByMechanicAndStatus órdenes del mecánico en el estado dado, sin contar excludeOrderID.
func (r *ServiceOrderRepo) CountByMechanicAndStatus(ctx context.Context, mechanicID, status, excludeOrderID string) (int, error) {
	q := r.sb.Select("count(*)").From("service_orders").
		Where(sq.Eq{"mechanic_id": mechanicID, "status": status})
	if isUUID(excludeOrderID) {
		q = q.Where(sq.NotEq{"id": excludeOrderID})
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("count by mechanic: build: %w", err)
	}
	var n int
	if err := r.q.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count by mechanic: %w", err)
	}
	return n, nil
}
