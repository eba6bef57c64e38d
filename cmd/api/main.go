package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Taller-api/internal/application/events"
	"github.com/jhoicas/Taller-api/internal/application/inventory"
	"github.com/jhoicas/Taller-api/internal/application/serviceorder"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
	rules "github.com/jhoicas/Taller-api/internal/domain/serviceorder"
	"github.com/jhoicas/Taller-api/internal/infrastructure/memory"
	"github.com/jhoicas/Taller-api/internal/infrastructure/messaging"
	"github.com/jhoicas/Taller-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Taller-api/internal/interfaces/http"
	"github.com/jhoicas/Taller-api/pkg/config"
	"github.com/jhoicas/Taller-api/pkg/logger"
)

// storage adaptadores de persistencia elegidos por STORAGE_DRIVER.
type storage struct {
	txRunner  serviceorder.TxRunner
	reader    serviceorder.OrderReader
	parts     repository.PartRepository
	movements repository.InventoryMovementRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	statuses := rules.StatusSet{
		Waiting:    cfg.Orders.StatusWaiting,
		InProgress: cfg.Orders.StatusInProgress,
		Completed:  cfg.Orders.StatusCompleted,
		Paid:       cfg.Orders.StatusPaid,
	}
	if err := statuses.Validate(); err != nil {
		log.Fatal().Err(err).Msg("estados de orden")
	}
	maxAmount, err := decimal.NewFromString(cfg.Orders.MaxAmount)
	if err != nil || !maxAmount.IsPositive() || maxAmount.GreaterThan(rules.AmountCeiling) {
		log.Fatal().
			Str("value", cfg.Orders.MaxAmount).
			Str("max", rules.AmountCeiling.String()).
			Msg("ORDER_MAX_AMOUNT debe ser un decimal positivo dentro del ancho de columna")
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kafkaPub := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaPub.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publicador kafka")
			}
		}()
		publisher = kafkaPub
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	ledger := inventory.NewLedger()
	coordinator := serviceorder.NewCoordinator(store.txRunner, store.reader, ledger, serviceorder.Config{
		Statuses:        statuses,
		MaxAmount:       maxAmount,
		MaxLineQuantity: cfg.Orders.MaxLineQuantity,
	}, publisher, log)
	adjustmentUC := inventory.NewRegisterAdjustmentUseCase(store.txRunner, ledger, store.movements, publisher, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.parts)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Coordinator:   coordinator,
		Adjustments:   adjustmentUC,
		Replenishment: replenishmentUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage conecta PostgreSQL (aplicando el esquema) o levanta el store en memoria con datos demo.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewSeeded()
		return &storage{
			txRunner:  s,
			reader:    s,
			parts:     s.Parts(),
			movements: s.Movements(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.ApplySchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool),
		reader:    postgres.NewServiceOrderRepository(pool),
		parts:     postgres.NewPartRepository(pool),
		movements: postgres.NewInventoryMovementRepository(pool),
		close:     pool.Close,
	}, nil
}
