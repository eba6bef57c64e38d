package serviceorder_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Taller-api/internal/application/events"
	"github.com/jhoicas/Taller-api/internal/application/inventory"
	"github.com/jhoicas/Taller-api/internal/application/serviceorder"
	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
	rules "github.com/jhoicas/Taller-api/internal/domain/serviceorder"
	"github.com/jhoicas/Taller-api/internal/infrastructure/memory"
	"github.com/jhoicas/Taller-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// flakyRunner devuelve un conflicto transitorio en las primeras llamadas.
type flakyRunner struct {
	inner    serviceorder.TxRunner
	failures int32
	calls    int32
}

func (f *flakyRunner) Run(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	atomic.AddInt32(&f.calls, 1)
	if atomic.AddInt32(&f.failures, -1) >= 0 {
		return &domain.StorageError{Cause: errors.New("could not serialize access"), Transient: true}
	}
	return f.inner.Run(ctx, fn)
}

type fixture struct {
	store      *memory.Store
	coord      *serviceorder.Coordinator
	pub        *recordingPublisher
	customerID string
	vehicleID  string
	mechanicID string
	serviceID  string
	partID     string
	actorID    string
}

func newFixture(t *testing.T, stock int) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.New(),
		pub:        &recordingPublisher{},
		customerID: gofakeit.UUID(),
		vehicleID:  gofakeit.UUID(),
		mechanicID: gofakeit.UUID(),
		serviceID:  gofakeit.UUID(),
		partID:     gofakeit.UUID(),
		actorID:    gofakeit.UUID(),
	}
	f.store.PutCustomer(entity.Customer{ID: f.customerID, Name: gofakeit.Name(), Email: gofakeit.Email()})
	f.store.PutVehicle(entity.Vehicle{ID: f.vehicleID, CustomerID: f.customerID, Plate: gofakeit.LetterN(6), Model: gofakeit.CarModel()})
	f.store.PutMechanic(entity.Mechanic{ID: f.mechanicID, Name: gofakeit.Name()})
	f.store.PutService(entity.Service{ID: f.serviceID, Name: "Cambio de aceite", Price: decimal.NewFromInt(150), Active: true})
	f.store.PutPart(entity.Part{ID: f.partID, Name: "Filtro", SalePrice: decimal.NewFromInt(50), Quantity: stock, MinQuantity: 0})
	f.coord = f.newCoordinator(f.store)
	return f
}

func (f *fixture) newCoordinator(runner serviceorder.TxRunner) *serviceorder.Coordinator {
	return serviceorder.NewCoordinator(runner, f.store, inventory.NewLedger(), serviceorder.Config{
		Statuses: rules.DefaultStatusSet(),
	}, f.pub, logger.Nop())
}

func (f *fixture) createCmd(partQty int) serviceorder.CreateCommand {
	cmd := serviceorder.CreateCommand{
		ActorID:      f.actorID,
		CustomerID:   f.customerID,
		VehicleID:    f.vehicleID,
		OpenedAt:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ServiceLines: []serviceorder.ServiceLineInput{{ServiceID: f.serviceID, Quantity: 1}},
	}
	if partQty > 0 {
		cmd.PartLines = []serviceorder.PartLineInput{{PartID: f.partID, Quantity: partQty}}
	}
	return cmd
}

func (f *fixture) movementsOf(t *testing.T, orderID string) []*entity.InventoryMovement {
	t.Helper()
	list, err := f.store.Movements().ListByOrder(context.Background(), orderID)
	require.NoError(t, err)
	return list
}

func (f *fixture) lineQuantity(t *testing.T, orderID string) int {
	t.Helper()
	detail, err := f.store.GetDetail(context.Background(), orderID)
	require.NoError(t, err)
	if detail == nil {
		return 0
	}
	total := 0
	for _, l := range detail.PartLines {
		total += l.Quantity
	}
	return total
}

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Crear / cancelar
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_EjemploTotalYDescuentoDeStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	cmd := f.createCmd(2)
	cmd.Discount = decimal.NewFromInt(20)

	detail, err := f.coord.Create(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "230.00", detail.Order.Total.StringFixed(2))
	assert.Equal(t, "WAITING", detail.Order.Status)
	assert.Equal(t, 8, f.store.PartQuantity(f.partID))
	movs := f.movementsOf(t, detail.Order.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, -2, movs[0].Quantity)
	assert.Equal(t, 10, movs[0].QuantityBefore)
	assert.Equal(t, 8, movs[0].QuantityAfter)
	assert.Equal(t, f.actorID, movs[0].CreatedBy)

	got, err := f.coord.Get(ctx, detail.Order.ID)
	require.NoError(t, err)
	require.Len(t, got.PartLines, 1)
	assert.Equal(t, "Filtro", got.PartLines[0].PartName)
	assert.Equal(t, "Cambio de aceite", got.ServiceLines[0].ServiceName)

	require.NoError(t, f.coord.Cancel(ctx, detail.Order.ID, f.actorID))
	assert.Equal(t, 10, f.store.PartQuantity(f.partID), "cancelar devuelve exactamente 2")
	_, err = f.coord.Get(ctx, detail.Order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{events.TypeServiceOrderCreated, events.TypeServiceOrderCancelled}, f.pub.types())
}

func TestCreate_StockInsuficienteNoPersisteNada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	_, err := f.coord.Create(ctx, f.createCmd(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var se *domain.InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Available)
	assert.Equal(t, 3, se.Requested)
	assert.Contains(t, err.Error(), "disponible 1, solicitado 3")
	assert.Equal(t, 1, f.store.PartQuantity(f.partID))
	movs, err := f.store.Movements().ListByPart(ctx, f.partID, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
	assert.Empty(t, f.pub.types())
}

func TestCreate_LoteAtomicoEntrePiezas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	scarce := gofakeit.UUID()
	f.store.PutPart(entity.Part{ID: scarce, Name: "Bujía", SalePrice: decimal.NewFromInt(5), Quantity: 1})
	cmd := f.createCmd(4)
	cmd.PartLines = append(cmd.PartLines, serviceorder.PartLineInput{PartID: scarce, Quantity: 2})

	_, err := f.coord.Create(ctx, cmd)

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 10, f.store.PartQuantity(f.partID), "ninguna pieza del lote cambia")
	assert.Equal(t, 1, f.store.PartQuantity(scarce))
}

func TestCreate_ReferenciasInexistentes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)

	tests := []struct {
		name   string
		mutate func(*serviceorder.CreateCommand)
		entity string
	}{
		{"cliente", func(c *serviceorder.CreateCommand) { c.CustomerID = gofakeit.UUID() }, "customer"},
		{"vehículo", func(c *serviceorder.CreateCommand) { c.VehicleID = gofakeit.UUID() }, "vehicle"},
		{"mecánico", func(c *serviceorder.CreateCommand) { c.MechanicID = ptr(gofakeit.UUID()) }, "mechanic"},
		{"servicio", func(c *serviceorder.CreateCommand) {
			c.ServiceLines = []serviceorder.ServiceLineInput{{ServiceID: gofakeit.UUID(), Quantity: 1}}
		}, "service"},
		{"pieza", func(c *serviceorder.CreateCommand) {
			c.PartLines = []serviceorder.PartLineInput{{PartID: gofakeit.UUID(), Quantity: 1}}
		}, "part"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := f.createCmd(1)
			tt.mutate(&cmd)

			_, err := f.coord.Create(ctx, cmd)

			require.ErrorIs(t, err, domain.ErrNotFound)
			var nf *domain.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.entity, nf.Entity)
			assert.Equal(t, 10, f.store.PartQuantity(f.partID))
		})
	}
}

func TestCreate_ValidacionesDeNegocio(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	otherCustomer := gofakeit.UUID()
	f.store.PutCustomer(entity.Customer{ID: otherCustomer, Name: gofakeit.Name()})
	inactive := gofakeit.UUID()
	f.store.PutService(entity.Service{ID: inactive, Name: "Descontinuado", Price: decimal.NewFromInt(10), Active: false})

	tests := []struct {
		name   string
		mutate func(*serviceorder.CreateCommand)
		target error
	}{
		{"cierre antes de apertura", func(c *serviceorder.CreateCommand) {
			c.ClosedAt = ptr(c.OpenedAt.AddDate(0, 0, -1))
		}, domain.ErrInvalidDateOrder},
		{"completada sin forma de pago", func(c *serviceorder.CreateCommand) { c.Status = "COMPLETED" }, domain.ErrPaymentMethodRequired},
		{"descuento mayor al subtotal", func(c *serviceorder.CreateCommand) { c.Discount = decimal.NewFromInt(1000) }, domain.ErrInvalidDiscount},
		{"descuento negativo", func(c *serviceorder.CreateCommand) { c.Discount = decimal.NewFromInt(-1) }, domain.ErrInvalidDiscount},
		{"estado desconocido", func(c *serviceorder.CreateCommand) { c.Status = "ARCHIVED" }, domain.ErrInvalidInput},
		{"pieza repetida", func(c *serviceorder.CreateCommand) {
			c.PartLines = append(c.PartLines, serviceorder.PartLineInput{PartID: f.partID, Quantity: 1})
		}, domain.ErrInvalidInput},
		{"cantidad cero", func(c *serviceorder.CreateCommand) { c.PartLines[0].Quantity = 0 }, domain.ErrInvalidInput},
		{"precio negativo", func(c *serviceorder.CreateCommand) { c.PartLines[0].UnitPrice = ptr(decimal.NewFromInt(-5)) }, domain.ErrInvalidInput},
		{"vehículo de otro cliente", func(c *serviceorder.CreateCommand) { c.CustomerID = otherCustomer }, domain.ErrInvalidInput},
		{"servicio inactivo", func(c *serviceorder.CreateCommand) {
			c.ServiceLines = []serviceorder.ServiceLineInput{{ServiceID: inactive, Quantity: 1}}
		}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := f.createCmd(2)
			tt.mutate(&cmd)

			_, err := f.coord.Create(ctx, cmd)

			require.ErrorIs(t, err, tt.target)
			assert.Equal(t, 10, f.store.PartQuantity(f.partID))
		})
	}
}

func TestCreate_CompletadaConFormaDePago(t *testing.T) {
	f := newFixture(t, 10)
	cmd := f.createCmd(1)
	cmd.Status = "COMPLETED"
	cmd.PaymentMethod = ptr(gofakeit.RandomString([]string{"efectivo", "tarjeta", "transferencia"}))
	cmd.ClosedAt = ptr(cmd.OpenedAt.AddDate(0, 0, 2))

	detail, err := f.coord.Create(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", detail.Order.Status)
	assert.Equal(t, "200.00", detail.Order.Total.StringFixed(2))
}

func TestCancel_OrdenInexistente(t *testing.T) {
	f := newFixture(t, 10)

	err := f.coord.Cancel(context.Background(), gofakeit.UUID(), f.actorID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualizar
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_SoloDeltasIncrementalesEIdempotente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	created, err := f.coord.Create(ctx, f.createCmd(2))
	require.NoError(t, err)
	orderID := created.Order.ID

	cmd := serviceorder.UpdateCommand{
		OrderID:      orderID,
		ActorID:      f.actorID,
		ReplaceParts: true,
		PartLines:    []serviceorder.PartLineInput{{PartID: f.partID, Quantity: 5}},
	}
	updated, err := f.coord.Update(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 15, f.store.PartQuantity(f.partID))
	assert.Equal(t, "400.00", updated.Order.Total.StringFixed(2))
	assert.Equal(t, 20, f.store.PartQuantity(f.partID)+f.lineQuantity(t, orderID))

	_, err = f.coord.Update(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 15, f.store.PartQuantity(f.partID), "repetir la misma petición no mueve stock")
	movs := f.movementsOf(t, orderID)
	require.Len(t, movs, 2)
	assert.Equal(t, -3, movs[1].Quantity)
}

func TestUpdate_ReducirYQuitarDevuelveStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	created, err := f.coord.Create(ctx, f.createCmd(6))
	require.NoError(t, err)
	orderID := created.Order.ID

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{
		OrderID: orderID, ActorID: f.actorID, ReplaceParts: true,
		PartLines: []serviceorder.PartLineInput{{PartID: f.partID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, f.store.PartQuantity(f.partID))

	updated, err := f.coord.Update(ctx, serviceorder.UpdateCommand{OrderID: orderID, ActorID: f.actorID, ReplaceParts: true})
	require.NoError(t, err)
	assert.Empty(t, updated.PartLines)
	assert.Equal(t, 10, f.store.PartQuantity(f.partID))
	assert.Equal(t, "150.00", updated.Order.Total.StringFixed(2))
}

func TestUpdate_StockInsuficienteDejaLaOrdenIntacta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	created, err := f.coord.Create(ctx, f.createCmd(2))
	require.NoError(t, err)

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{
		OrderID: created.Order.ID, ActorID: f.actorID, ReplaceParts: true,
		Notes:     ptr("no debe guardarse"),
		PartLines: []serviceorder.PartLineInput{{PartID: f.partID, Quantity: 9}},
	})

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "disponible 3, solicitado 7")
	assert.Equal(t, 3, f.store.PartQuantity(f.partID))
	got, err := f.coord.Get(ctx, created.Order.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Order.Notes)
	assert.Equal(t, 2, got.PartLines[0].Quantity)
}

func TestUpdate_SinLineasConservaLasPersistidas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	created, err := f.coord.Create(ctx, f.createCmd(2))
	require.NoError(t, err)

	updated, err := f.coord.Update(ctx, serviceorder.UpdateCommand{
		OrderID:  created.Order.ID,
		ActorID:  f.actorID,
		Discount: ptr(decimal.NewFromInt(50)),
	})

	require.NoError(t, err)
	assert.Len(t, updated.PartLines, 1)
	assert.Len(t, updated.ServiceLines, 1)
	assert.Equal(t, "200.00", updated.Order.Total.StringFixed(2))
	assert.Equal(t, 8, f.store.PartQuantity(f.partID))
}

func TestUpdate_TransicionesYPago(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	created, err := f.coord.Create(ctx, f.createCmd(1))
	require.NoError(t, err)
	id := created.Order.ID

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{OrderID: id, Status: ptr("PAID")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "WAITING no pasa directo a PAID")

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{OrderID: id, Status: ptr("COMPLETED")})
	assert.ErrorIs(t, err, domain.ErrPaymentMethodRequired)

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{OrderID: id, Status: ptr("COMPLETED"), PaymentMethod: ptr("efectivo")})
	require.NoError(t, err)

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{OrderID: id, ClearPaymentMethod: true})
	assert.ErrorIs(t, err, domain.ErrPaymentMethodRequired, "una orden completada no puede quedar sin forma de pago")

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{OrderID: id, Status: ptr("PAID")})
	require.NoError(t, err)

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{OrderID: id, Notes: ptr("x")})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)

	require.NoError(t, f.coord.Cancel(ctx, id, f.actorID), "una orden pagada aún se puede cancelar")
	assert.Equal(t, 10, f.store.PartQuantity(f.partID))
}

func TestUpdate_FechasInvalidas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	created, err := f.coord.Create(ctx, f.createCmd(1))
	require.NoError(t, err)

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{
		OrderID:  created.Order.ID,
		ClosedAt: ptr(created.Order.OpenedAt.Add(-24 * time.Hour)),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidDateOrder)
}

func TestUpdate_OrdenInexistente(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.coord.Update(context.Background(), serviceorder.UpdateCommand{OrderID: gofakeit.UUID(), Notes: ptr("x")})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mecánico en proceso
// ──────────────────────────────────────────────────────────────────────────────

func TestMecanicoOcupado_CrearYActualizar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	first := f.createCmd(1)
	first.MechanicID = &f.mechanicID
	first.Status = "IN_PROGRESS"
	_, err := f.coord.Create(ctx, first)
	require.NoError(t, err)

	second := f.createCmd(1)
	second.MechanicID = &f.mechanicID
	second.Status = "IN_PROGRESS"
	_, err = f.coord.Create(ctx, second)
	require.ErrorIs(t, err, domain.ErrMechanicBusy)
	assert.Equal(t, 9, f.store.PartQuantity(f.partID), "el intento fallido no consume stock")

	waiting := f.createCmd(0)
	waiting.MechanicID = &f.mechanicID
	other, err := f.coord.Create(ctx, waiting)
	require.NoError(t, err, "en espera el mecánico puede tener más órdenes")

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{OrderID: other.Order.ID, Status: ptr("IN_PROGRESS")})
	assert.ErrorIs(t, err, domain.ErrMechanicBusy)
	got, err := f.coord.Get(ctx, other.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "WAITING", got.Order.Status)
}

func TestMecanicoOcupado_LaPropiaOrdenNoCuenta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	cmd := f.createCmd(1)
	cmd.MechanicID = &f.mechanicID
	cmd.Status = "IN_PROGRESS"
	created, err := f.coord.Create(ctx, cmd)
	require.NoError(t, err)

	_, err = f.coord.Update(ctx, serviceorder.UpdateCommand{OrderID: created.Order.ID, Notes: ptr("revisar frenos")})

	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y reintentos
// ──────────────────────────────────────────────────────────────────────────────

func TestConcurrencia_DiezOrdenesDeCincoUnidades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.coord.Create(ctx, f.createCmd(5))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 50, f.store.PartQuantity(f.partID))
}

func TestConcurrencia_MecanicoSoloUnaVezEnProceso(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)

	var wg sync.WaitGroup
	var ok, busy int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd := f.createCmd(1)
			cmd.MechanicID = &f.mechanicID
			cmd.Status = "IN_PROGRESS"
			_, err := f.coord.Create(ctx, cmd)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domain.ErrMechanicBusy):
				atomic.AddInt32(&busy, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(7), busy)
	assert.Equal(t, 99, f.store.PartQuantity(f.partID))
}

func TestReintento_ConflictoTransitorioUnaVez(t *testing.T) {
	f := newFixture(t, 10)
	runner := &flakyRunner{inner: f.store, failures: 1}
	coord := f.newCoordinator(runner)

	_, err := coord.Create(context.Background(), f.createCmd(2))

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&runner.calls))
	assert.Equal(t, 8, f.store.PartQuantity(f.partID))
}

func TestReintento_SoloUnReintento(t *testing.T) {
	f := newFixture(t, 10)
	runner := &flakyRunner{inner: f.store, failures: 5}
	coord := f.newCoordinator(runner)

	_, err := coord.Create(context.Background(), f.createCmd(2))

	require.ErrorIs(t, err, domain.ErrStorage)
	assert.True(t, domain.IsTransient(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&runner.calls))
	assert.Equal(t, 10, f.store.PartQuantity(f.partID))
}

func TestReintento_ErroresDeNegocioNoSeReintentan(t *testing.T) {
	f := newFixture(t, 1)
	runner := &flakyRunner{inner: f.store}
	coord := f.newCoordinator(runner)

	_, err := coord.Create(context.Background(), f.createCmd(2))

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.calls))
}

// ──────────────────────────────────────────────────────────────────────────────
// Conservación y eventos
// ──────────────────────────────────────────────────────────────────────────────

func TestConservacion_SecuenciaDeOperaciones(t *testing.T) {
	ctx := context.Background()
	const initial = 30
	f := newFixture(t, initial)
	var orders []string

	check := func() {
		t.Helper()
		sum := f.store.PartQuantity(f.partID)
		for _, id := range orders {
			sum += f.lineQuantity(t, id)
		}
		assert.Equal(t, initial, sum)
	}

	for _, qty := range []int{3, 7, 1} {
		d, err := f.coord.Create(ctx, f.createCmd(qty))
		require.NoError(t, err)
		orders = append(orders, d.Order.ID)
		check()
	}
	for i, qty := range []int{10, 2, 4} {
		_, err := f.coord.Update(ctx, serviceorder.UpdateCommand{
			OrderID: orders[i], ReplaceParts: true,
			PartLines: []serviceorder.PartLineInput{{PartID: f.partID, Quantity: qty}},
		})
		require.NoError(t, err)
		check()
	}
	require.NoError(t, f.coord.Cancel(ctx, orders[1], f.actorID))
	check()
	assert.Equal(t, 16, f.store.PartQuantity(f.partID))
}

func TestEventos_StockBajoTrasConfirmar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10)
	f.store.PutPart(entity.Part{ID: f.partID, Name: "Filtro", SalePrice: decimal.NewFromInt(50), Quantity: 10, MinQuantity: 8})

	_, err := f.coord.Create(ctx, f.createCmd(3))

	require.NoError(t, err)
	assert.Equal(t, []string{events.TypeServiceOrderCreated, events.TypePartLowStock}, f.pub.types())
	payload, ok := f.pub.events[1].Payload.(events.LowStockPayload)
	require.True(t, ok)
	assert.Equal(t, 7, payload.Quantity)
	assert.Equal(t, 8, payload.MinQuantity)
}

func TestCreate_SubtotalFueraDeRangoEsErrorDeEntrada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100_000)
	cmd := f.createCmd(100_000)
	cmd.PartLines[0].UnitPrice = ptr(decimal.NewFromInt(1_000_000_000))

	_, err := f.coord.Create(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, domain.IsTransient(err))
	assert.NotErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, 100_000, f.store.PartQuantity(f.partID))
	assert.Empty(t, f.pub.types())
}
