//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Taller-api/internal/application/events"
	"github.com/jhoicas/Taller-api/internal/application/inventory"
	"github.com/jhoicas/Taller-api/internal/application/serviceorder"
	"github.com/jhoicas/Taller-api/internal/domain"
	rules "github.com/jhoicas/Taller-api/internal/domain/serviceorder"
	"github.com/jhoicas/Taller-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Taller-api/pkg/config"
	"github.com/jhoicas/Taller-api/pkg/logger"
)

const pgImage = "postgres:17.0-alpine3.20"

var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()
	pgC, err := tcpostgres.Run(ctx, pgImage,
		tcpostgres.WithDatabase("taller"),
		tcpostgres.WithUsername("taller"),
		tcpostgres.WithPassword("taller"),
		tc.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "iniciar postgres:", err)
		os.Exit(1)
	}
	dbURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err == nil {
		pool, err = connect(ctx, dbURL)
	}
	if err == nil {
		err = postgres.ApplySchema(ctx, pool)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "preparar base de datos:", err)
		_ = pgC.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()
	pool.Close()
	_ = pgC.Terminate(ctx)
	os.Exit(code)
}

// connect reintenta mientras el servidor termina de arrancar.
func connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	var lastErr error
	for i := 0; i < 50; i++ {
		p, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dbURL, MaxConns: 30})
		if err == nil {
			return p, nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	return nil, lastErr
}

type seed struct {
	customerID string
	vehicleID  string
	mechanicID string
	serviceID  string
	partID     string
}

func seedCatalog(t *testing.T, stock int) seed {
	t.Helper()
	ctx := context.Background()
	s := seed{
		customerID: uuid.NewString(),
		vehicleID:  uuid.NewString(),
		mechanicID: uuid.NewString(),
		serviceID:  uuid.NewString(),
		partID:     uuid.NewString(),
	}
	stmts := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO customers (id, name) VALUES ($1, 'Cliente')`, []any{s.customerID}},
		{`INSERT INTO vehicles (id, customer_id, plate) VALUES ($1, $2, 'XYZ987')`, []any{s.vehicleID, s.customerID}},
		{`INSERT INTO mechanics (id, name) VALUES ($1, 'Mecánico')`, []any{s.mechanicID}},
		{`INSERT INTO services (id, name, price) VALUES ($1, 'Diagnóstico', 150)`, []any{s.serviceID}},
		{`INSERT INTO parts (id, name, sale_price, quantity) VALUES ($1, 'Filtro', 50, $2)`, []any{s.partID, stock}},
	}
	for _, st := range stmts {
		_, err := pool.Exec(ctx, st.sql, st.args...)
		require.NoError(t, err)
	}
	return s
}

func newCoordinator() *serviceorder.Coordinator {
	return serviceorder.NewCoordinator(
		postgres.NewTxRunner(pool),
		postgres.NewServiceOrderRepository(pool),
		inventory.NewLedger(),
		serviceorder.Config{Statuses: rules.DefaultStatusSet()},
		events.NopPublisher{},
		logger.Nop(),
	)
}

func (s seed) createCmd(qty int) serviceorder.CreateCommand {
	return serviceorder.CreateCommand{
		ActorID:      "integration",
		CustomerID:   s.customerID,
		VehicleID:    s.vehicleID,
		OpenedAt:     time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		ServiceLines: []serviceorder.ServiceLineInput{{ServiceID: s.serviceID, Quantity: 1}},
		PartLines:    []serviceorder.PartLineInput{{PartID: s.partID, Quantity: qty}},
	}
}

func quantity(t *testing.T, partID string) int {
	t.Helper()
	p, err := postgres.NewPartRepository(pool).GetByID(context.Background(), partID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func TestIntegration_CrearActualizarCancelar(t *testing.T) {
	ctx := context.Background()
	s := seedCatalog(t, 10)
	coord := newCoordinator()
	cmd := s.createCmd(2)
	cmd.Discount = decimal.NewFromInt(20)

	created, err := coord.Create(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "230.00", created.Order.Total.StringFixed(2))
	assert.Equal(t, 8, quantity(t, s.partID))

	detail, err := coord.Get(ctx, created.Order.ID)
	require.NoError(t, err)
	require.Len(t, detail.PartLines, 1)
	assert.Equal(t, "Filtro", detail.PartLines[0].PartName)
	assert.Equal(t, "Diagnóstico", detail.ServiceLines[0].ServiceName)

	upd := serviceorder.UpdateCommand{
		OrderID: created.Order.ID, ReplaceParts: true,
		PartLines: []serviceorder.PartLineInput{{PartID: s.partID, Quantity: 6}},
	}
	_, err = coord.Update(ctx, upd)
	require.NoError(t, err)
	_, err = coord.Update(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, 4, quantity(t, s.partID))

	movs, err := postgres.NewInventoryMovementRepository(pool).ListByOrder(ctx, created.Order.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	require.NoError(t, coord.Cancel(ctx, created.Order.ID, "integration"))
	assert.Equal(t, 10, quantity(t, s.partID))
	_, err = coord.Get(ctx, created.Order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegration_StockInsuficienteSinCambios(t *testing.T) {
	ctx := context.Background()
	s := seedCatalog(t, 1)

	_, err := newCoordinator().Create(ctx, s.createCmd(3))

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "disponible 1, solicitado 3")
	assert.Equal(t, 1, quantity(t, s.partID))
	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM service_orders WHERE customer_id = $1`, s.customerID).Scan(&n))
	assert.Zero(t, n)
}

func TestIntegration_ConcurrenciaSinActualizacionesPerdidas(t *testing.T) {
	ctx := context.Background()
	s := seedCatalog(t, 100)
	coord := newCoordinator()

	var wg sync.WaitGroup
	var failures int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := coord.Create(ctx, s.createCmd(5)); err != nil {
				atomic.AddInt32(&failures, 1)
				t.Log(err)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&failures))
	assert.Equal(t, 50, quantity(t, s.partID))
}

func TestIntegration_MecanicoExclusivoBajoConcurrencia(t *testing.T) {
	ctx := context.Background()
	s := seedCatalog(t, 100)
	coord := newCoordinator()

	var wg sync.WaitGroup
	var ok, busy int32
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd := s.createCmd(1)
			cmd.MechanicID = &s.mechanicID
			cmd.Status = "IN_PROGRESS"
			_, err := coord.Create(ctx, cmd)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, domain.ErrMechanicBusy):
				atomic.AddInt32(&busy, 1)
			default:
				t.Log(err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(5), busy)
	assert.Equal(t, 99, quantity(t, s.partID))
}

func TestIntegration_ListBelowMinimum(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	_, err := pool.Exec(ctx, `INSERT INTO parts (id, name, quantity, min_quantity) VALUES ($1, 'Pastillas', 1, 1000000)`, id)
	require.NoError(t, err)

	list, err := postgres.NewPartRepository(pool).ListBelowMinimum(ctx, 1, 0)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}
