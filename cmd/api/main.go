package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/parametros-credito/internal/application/rates"
	"github.com/jhoicas/parametros-credito/internal/application/usecase"
	"github.com/jhoicas/parametros-credito/internal/domain/repository"
	infracache "github.com/jhoicas/parametros-credito/internal/infrastructure/cache"
	"github.com/jhoicas/parametros-credito/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/parametros-credito/internal/infrastructure/pdf"
	"github.com/jhoicas/parametros-credito/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/parametros-credito/internal/interfaces/http"
	"github.com/jhoicas/parametros-credito/pkg/config"
	"github.com/jhoicas/parametros-credito/pkg/logger"
)

// storage repositorios y runner transaccional del driver elegido.
type storage struct {
	products repository.CreditProductRepository
	rates    repository.InterestRateRepository
	docs     repository.RequiredDocumentRepository
	txRunner rates.TxRunner
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Str("timezone", cfg.Rates.Timezone).
		Msg("iniciando aplicación")

	loc, err := cfg.Rates.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria")
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Caché de tasa vigente: opcional, solo si hay REDIS_ADDR.
	var rateCache rates.CurrentRateCache
	if cfg.Redis.Addr != "" {
		client := infracache.NewRedisClient(infracache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no responde; la caché degradará a consultas directas")
		}
		cancel()
		rateCache = infracache.NewRedisRateCache(client, cfg.Rates.CacheTTL, log.Component("rate_cache"))
	}

	rateUC := rates.NewRateLifecycleUseCase(store.txRunner, store.rates, store.products, rateCache, log.Zerolog(), loc)
	productUC := usecase.NewCreditProductUseCase(store.products)
	documentUC := usecase.NewRequiredDocumentUseCase(store.docs, store.products)
	rateSheetUC := usecase.NewRateSheetUseCase(
		store.products, rateUC, store.docs,
		infrapdf.NewMarotoRateSheetGenerator(cfg.App.Name),
		loc, log.Component("rate_sheet"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Parámetros de Crédito API",
		}))
	} else {
		log.Warn().Str("file", cfg.App.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:  productUC,
		RateUC:     rateUC,
		DocumentUC: documentUC,
		RateSheet:  rateSheetUC,
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
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			products: memory.NewCreditProductRepository(s),
			rates:    memory.NewInterestRateRepository(s),
			docs:     memory.NewRequiredDocumentRepository(s),
			txRunner: memory.NewTxRunner(s),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		products: postgres.NewCreditProductRepository(pool),
		rates:    postgres.NewInterestRateRepository(pool),
		docs:     postgres.NewRequiredDocumentRepository(pool),
		txRunner: postgres.NewTxRunner(pool),
		close:    pool.Close,
	}, nil
}
