package serviceorder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/application/events"
	"github.com/jhoicas/Taller-api/internal/application/inventory"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
	rules "github.com/jhoicas/Taller-api/internal/domain/serviceorder"
	"github.com/jhoicas/Taller-api/pkg/logger"
)

// Config parámetros de negocio de las órdenes.
type Config struct {
	Statuses        rules.StatusSet
	MaxAmount       decimal.Decimal
	MaxLineQuantity int
}

// Coordinator ejecuta crear, actualizar y cancelar como una sola transacción cada una:
// stock, orden, líneas y movimientos se confirman o se revierten juntos.
type Coordinator struct {
	txRunner  TxRunner
	reader    OrderReader
	ledger    *inventory.Ledger
	validator *Validator
	pricing   rules.PricingCalculator
	statuses  rules.StatusSet
	publisher events.Publisher
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

// NewCoordinator construye el coordinador.
func NewCoordinator(
	txRunner TxRunner,
	reader OrderReader,
	ledger *inventory.Ledger,
	cfg Config,
	publisher events.Publisher,
	log *logger.Logger,
) *Coordinator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Coordinator{
		txRunner:  txRunner,
		reader:    reader,
		ledger:    ledger,
		validator: NewValidator(cfg.Statuses, cfg.MaxAmount, cfg.MaxLineQuantity),
		pricing:   rules.NewPricingCalculator(cfg.MaxAmount),
		statuses:  cfg.Statuses,
		publisher: publisher,
		log:       log.Component("service_order"),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// result lo que una operación confirmada necesita para responder y publicar.
type result struct {
	detail  *entity.ServiceOrderDetail
	records []inventory.MovementRecord
}

// Create valida, descuenta el stock de todas las piezas como un lote y persiste orden y líneas.
func (c *Coordinator) Create(ctx context.Context, cmd CreateCommand) (*entity.ServiceOrderDetail, error) {
	if cmd.Status == "" {
		cmd.Status = c.statuses.Waiting
	}
	if cmd.OpenedAt.IsZero() {
		cmd.OpenedAt = c.now().UTC().Truncate(24 * time.Hour)
	}
	if err := c.validator.ValidateStatus("", cmd.Status); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateDates(cmd.OpenedAt, cmd.ClosedAt); err != nil {
		return nil, err
	}
	if err := c.validator.ValidatePayment(cmd.Status, cmd.PaymentMethod); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateServiceShape(cmd.ServiceLines); err != nil {
		return nil, err
	}
	if err := c.validator.ValidatePartShape(cmd.PartLines); err != nil {
		return nil, err
	}

	orderID := c.newID()
	var res result
	err := c.run(ctx, "create", func(uow repository.UnitOfWork) error {
		res = result{}
		if err := c.validator.ValidateReferences(ctx, uow.Catalog, cmd.CustomerID, cmd.VehicleID, cmd.MechanicID); err != nil {
			return err
		}
		if err := c.validator.CheckMechanicAvailable(ctx, uow, orderID, cmd.MechanicID, cmd.Status); err != nil {
			return err
		}
		services, err := c.validator.ResolveServiceLines(ctx, uow.Catalog, orderID, cmd.ServiceLines, nil)
		if err != nil {
			return err
		}
		parts, err := c.validator.ResolvePartLines(ctx, uow.Parts, orderID, cmd.PartLines)
		if err != nil {
			return err
		}
		total, err := c.pricing.ComputeTotal(services, parts, cmd.Discount)
		if err != nil {
			return err
		}

		partPlan := rules.ReconcileParts(nil, parts)
		records, err := c.ledger.ApplyBatch(ctx, uow, partPlan.StockDeltas(orderID, cmd.ActorID, "consumo en orden "+orderID))
		if err != nil {
			return err
		}

		now := c.now()
		order := &entity.ServiceOrder{
			ID:            orderID,
			CustomerID:    cmd.CustomerID,
			VehicleID:     cmd.VehicleID,
			MechanicID:    cmd.MechanicID,
			OpenedAt:      cmd.OpenedAt,
			ClosedAt:      cmd.ClosedAt,
			Status:        cmd.Status,
			PaymentMethod: cmd.PaymentMethod,
			Discount:      cmd.Discount,
			Total:         total,
			Notes:         cmd.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uow.Orders.Create(ctx, order); err != nil {
			return err
		}
		if err := persistServicePlan(ctx, uow.Orders, rules.ReconcileServices(nil, services)); err != nil {
			return err
		}
		if err := persistPartPlan(ctx, uow.Orders, partPlan); err != nil {
			return err
		}
		res = result{
			detail:  &entity.ServiceOrderDetail{Order: order, ServiceLines: services, PartLines: parts},
			records: records,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Order(orderID).Debug().Int("movements", len(res.records)).Msg("orden creada")
	c.publish(ctx, events.TypeServiceOrderCreated, cmd.ActorID, res)
	return res.detail, nil
}

// Update fusiona los cambios con el estado persistido y aplica solo los deltas incrementales.
// Repetir la misma petición no genera movimientos nuevos: el plan se calcula contra lo persistido.
func (c *Coordinator) Update(ctx context.Context, cmd UpdateCommand) (*entity.ServiceOrderDetail, error) {
	if cmd.ReplaceServices {
		if err := c.validator.ValidateServiceShape(cmd.ServiceLines); err != nil {
			return nil, err
		}
	}
	if cmd.ReplaceParts {
		if err := c.validator.ValidatePartShape(cmd.PartLines); err != nil {
			return nil, err
		}
	}

	var res result
	err := c.run(ctx, "update", func(uow repository.UnitOfWork) error {
		res = result{}
		current, err := uow.Orders.GetForUpdate(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NewNotFound("service_order", cmd.OrderID)
		}
		if c.statuses.IsFinal(current.Status) {
			return domain.NewValidation("status", "la orden está en estado "+current.Status+" y no admite cambios")
		}

		next := mergeOrder(*current, cmd)
		if err := c.validator.ValidateStatus(current.Status, next.Status); err != nil {
			return err
		}
		if err := c.validator.ValidateDates(next.OpenedAt, next.ClosedAt); err != nil {
			return err
		}
		if err := c.validator.ValidatePayment(next.Status, next.PaymentMethod); err != nil {
			return err
		}
		if referencesChanged(current, &next) {
			if err := c.validator.ValidateReferences(ctx, uow.Catalog, next.CustomerID, next.VehicleID, next.MechanicID); err != nil {
				return err
			}
		}
		if err := c.validator.CheckMechanicAvailable(ctx, uow, next.ID, next.MechanicID, next.Status); err != nil {
			return err
		}

		currentServices, err := uow.Orders.ListServiceLines(ctx, next.ID)
		if err != nil {
			return err
		}
		currentParts, err := uow.Orders.ListPartLines(ctx, next.ID)
		if err != nil {
			return err
		}
		services := currentServices
		if cmd.ReplaceServices {
			if services, err = c.validator.ResolveServiceLines(ctx, uow.Catalog, next.ID, cmd.ServiceLines, currentServices); err != nil {
				return err
			}
		}
		parts := currentParts
		if cmd.ReplaceParts {
			if parts, err = c.validator.ResolvePartLines(ctx, uow.Parts, next.ID, cmd.PartLines); err != nil {
				return err
			}
		}

		total, err := c.pricing.ComputeTotal(services, parts, next.Discount)
		if err != nil {
			return err
		}
		next.Total = total

		servicePlan := rules.ReconcileServices(currentServices, services)
		partPlan := rules.ReconcileParts(currentParts, parts)
		records, err := c.ledger.ApplyBatch(ctx, uow, partPlan.StockDeltas(next.ID, cmd.ActorID, "ajuste de orden "+next.ID))
		if err != nil {
			return err
		}

		if err := persistServicePlan(ctx, uow.Orders, servicePlan); err != nil {
			return err
		}
		if err := persistPartPlan(ctx, uow.Orders, partPlan); err != nil {
			return err
		}
		next.UpdatedAt = c.now()
		if err := uow.Orders.Update(ctx, &next); err != nil {
			return err
		}
		detail, err := uow.Orders.GetDetail(ctx, next.ID)
		if err != nil {
			return err
		}
		res = result{detail: detail, records: records}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Order(cmd.OrderID).Debug().Int("movements", len(res.records)).Msg("orden actualizada")
	c.publish(ctx, events.TypeServiceOrderUpdated, cmd.ActorID, res)
	return res.detail, nil
}

// Cancel devuelve al inventario todas las piezas de la orden y elimina líneas y orden.
func (c *Coordinator) Cancel(ctx context.Context, orderID, actorID string) error {
	var res result
	err := c.run(ctx, "cancel", func(uow repository.UnitOfWork) error {
		res = result{}
		order, err := uow.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NewNotFound("service_order", orderID)
		}
		services, err := uow.Orders.ListServiceLines(ctx, orderID)
		if err != nil {
			return err
		}
		parts, err := uow.Orders.ListPartLines(ctx, orderID)
		if err != nil {
			return err
		}

		partPlan := rules.ReconcileParts(parts, nil)
		records, err := c.ledger.ApplyBatch(ctx, uow, partPlan.StockDeltas(orderID, actorID, "cancelación de orden "+orderID))
		if err != nil {
			return err
		}
		if err := persistServicePlan(ctx, uow.Orders, rules.ReconcileServices(services, nil)); err != nil {
			return err
		}
		if err := persistPartPlan(ctx, uow.Orders, partPlan); err != nil {
			return err
		}
		if err := uow.Orders.Delete(ctx, orderID); err != nil {
			return err
		}
		res = result{detail: &entity.ServiceOrderDetail{Order: order}, records: records}
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Order(orderID).Debug().Int("movements", len(res.records)).Msg("orden cancelada")
	c.publish(ctx, events.TypeServiceOrderCancelled, actorID, res)
	return nil
}

// Get orden con líneas y nombres resueltos.
func (c *Coordinator) Get(ctx context.Context, orderID string) (*entity.ServiceOrderDetail, error) {
	detail, err := c.reader.GetDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, domain.NewNotFound("service_order", orderID)
	}
	return detail, nil
}

// run ejecuta fn en una transacción y la repite una vez con transacción nueva si el fallo es transitorio.
func (c *Coordinator) run(ctx context.Context, op string, fn func(uow repository.UnitOfWork) error) error {
	err := c.txRunner.Run(ctx, fn)
	if err == nil || !domain.IsTransient(err) {
		return err
	}
	c.log.Warn().Err(err).Str("op", op).Msg("conflicto transitorio de almacenamiento, reintentando")
	return c.txRunner.Run(ctx, fn)
}

func (c *Coordinator) publish(ctx context.Context, eventType, actorID string, res result) {
	order := res.detail.Order
	evts := []events.Event{{
		Type:       eventType,
		Key:        order.ID,
		OccurredAt: c.now(),
		Payload: events.ServiceOrderPayload{
			OrderID:    order.ID,
			Status:     order.Status,
			MechanicID: order.MechanicID,
			Total:      order.Total.StringFixed(2),
			Movements:  len(res.records),
			ActorID:    actorID,
		},
	}}
	evts = append(evts, inventory.LowStockEvents(res.records)...)
	if err := c.publisher.Publish(ctx, evts...); err != nil {
		c.log.Order(order.ID).Warn().Err(err).Str("event", eventType).Msg("publicar eventos de la orden")
	}
}

func mergeOrder(o entity.ServiceOrder, cmd UpdateCommand) entity.ServiceOrder {
	if cmd.CustomerID != nil {
		o.CustomerID = *cmd.CustomerID
	}
	if cmd.VehicleID != nil {
		o.VehicleID = *cmd.VehicleID
	}
	switch {
	case cmd.ClearMechanic:
		o.MechanicID = nil
	case cmd.MechanicID != nil:
		o.MechanicID = cmd.MechanicID
	}
	if cmd.OpenedAt != nil {
		o.OpenedAt = *cmd.OpenedAt
	}
	switch {
	case cmd.ClearClosedAt:
		o.ClosedAt = nil
	case cmd.ClosedAt != nil:
		o.ClosedAt = cmd.ClosedAt
	}
	if cmd.Status != nil {
		o.Status = *cmd.Status
	}
	if cmd.Discount != nil {
		o.Discount = *cmd.Discount
	}
	switch {
	case cmd.ClearPaymentMethod:
		o.PaymentMethod = nil
	case cmd.PaymentMethod != nil:
		o.PaymentMethod = cmd.PaymentMethod
	}
	if cmd.Notes != nil {
		o.Notes = *cmd.Notes
	}
	return o
}

func referencesChanged(before, after *entity.ServiceOrder) bool {
	return before.CustomerID != after.CustomerID ||
		before.VehicleID != after.VehicleID ||
		!sameID(before.MechanicID, after.MechanicID)
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func persistServicePlan(ctx context.Context, orders repository.ServiceOrderRepository, plan rules.ServicePlan) error {
	for _, l := range plan.Delete {
		if err := orders.DeleteServiceLine(ctx, l.OrderID, l.ServiceID); err != nil {
			return err
		}
	}
	for _, l := range plan.Update {
		if err := orders.UpdateServiceLine(ctx, l); err != nil {
			return err
		}
	}
	for _, l := range plan.Insert {
		if err := orders.InsertServiceLine(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func persistPartPlan(ctx context.Context, orders repository.ServiceOrderRepository, plan rules.PartPlan) error {
	for _, ch := range plan.Delete {
		if err := orders.DeletePartLine(ctx, ch.Old.OrderID, ch.Old.PartID); err != nil {
			return err
		}
	}
	for _, ch := range plan.Update {
		if err := orders.UpdatePartLine(ctx, *ch.New); err != nil {
			return err
		}
	}
	for _, ch := range plan.Insert {
		if err := orders.InsertPartLine(ctx, *ch.New); err != nil {
			return err
		}
	}
	return nil
}
