package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/LandedCost-api/internal/application/landedcost"
	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/domain/repository"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/catalog"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/lock"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/memory"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/LandedCost-api/internal/infrastructure/pdf"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/LandedCost-api/internal/interfaces/http"
	"github.com/jhoicas/LandedCost-api/pkg/config"
	"github.com/jhoicas/LandedCost-api/pkg/logger"
)

// storage adaptadores de persistencia según STORAGE_DRIVER.
type storage struct {
	shipments  repository.ShipmentRepository
	tx         landedcost.TxRunner
	categories landedcost.CategoryLookup
	prices     landedcost.PriceSink
	events     landedcost.EventSink
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New("landed_cost", reg)

	// Envío de precios: reintentos + circuit breaker alrededor del catálogo.
	sinkCfg := catalog.DefaultConfig()
	sinkCfg.RetryAttempts = cfg.Catalog.RetryAttempts
	sinkCfg.RetryDelay = cfg.Catalog.RetryDelay
	sinkCfg.FailureThreshold = uint32(cfg.Catalog.BreakerFailures)
	sinkCfg.OpenTimeout = cfg.Catalog.BreakerOpenAfter
	prices := catalog.NewResilientSink(st.prices, sinkCfg, log, rec)

	var locker landedcost.ShipmentLocker = lock.NewLocalLocker(cfg.Lock.Wait)
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.RedisLocker{R: rdb, TTL: cfg.Lock.TTL, Wait: cfg.Lock.Wait}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("candado distribuido en Redis")
	}

	svc := landedcost.NewService(landedcost.Deps{
		Shipments:  st.shipments,
		Tx:         st.tx,
		Locker:     locker,
		Categories: st.categories,
		Prices:     prices,
		Events:     st.events,
		Metrics:    rec,
		Log:        log.Component("landedcost"),
		NewID:      uuid.NewString,
		Config: landedcost.Config{
			ReferenceCurrency: cfg.LandedCost.ReferenceCurrency,
			CatalogCurrency:   cfg.LandedCost.CatalogCurrency,
		},
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (solo si existe el archivo generado)
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Landed Cost API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "catalog_breaker": prices.State().String()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Service:   svc,
		Sheet:     infrapdf.NewLandedCostSheet(cfg.App.Name),
		JWTSecret: cfg.JWT.Secret,
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

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("STORAGE_DRIVER=memory: los datos se pierden al reiniciar")
		shipments := memory.NewShipmentStore()
		return &storage{
			shipments:  shipments,
			tx:         shipments,
			categories: memory.NewCategoryStore(entity.DefaultExpenseCategories()...),
			prices:     memory.NewCatalogStore(),
			events:     memory.NewEventStore(),
			close:      func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.MigrateUp(cfg.DB.ConnectionString()); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		shipments:  postgres.NewShipmentRepository(pool),
		tx:         postgres.NewTxRunner(pool),
		categories: postgres.NewExpenseCategoryRepository(pool),
		prices:     postgres.NewCatalogRepository(pool),
		events:     postgres.NewShipmentEventRepository(pool),
		close:      pool.Close,
	}, nil
}
