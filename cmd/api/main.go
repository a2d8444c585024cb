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

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/labels"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/printer"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/registry"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/snapshot"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("store", cfg.Store.Driver).
		Str("printer", cfg.Printer.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	ids, err := registry.Open(cfg.Identifier.LogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Identifier.LogPath).Msg("abrir registro de identificadores")
	}
	defer func() {
		if err := ids.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar registro de identificadores")
		}
	}()
	log.Info().Int("issued", ids.Len()).Msg("registro de identificadores cargado")

	var store repository.LedgerStore
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		pgStore := postgres.NewLedgerStore(pool, log)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("crear esquema del ledger")
		}
		store = pgStore
	default:
		xlsxStore := xlsx.NewStore(cfg.Store.Path, cfg.Store.Sheet, log)
		if cfg.Store.Bootstrap {
			created, err := xlsxStore.Bootstrap()
			if err != nil {
				log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("crear libro de stock")
			}
			if created {
				log.Info().Str("path", cfg.Store.Path).Msg("libro de stock creado")
			}
		}
		store = xlsxStore
	}

	m := metrics.New("stock_ledger")

	sender, err := printer.New(cfg.Printer, log)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar impresora")
	}
	coordinator := labels.NewCoordinator(printer.NewEZPLRenderer(), sender, m, log)

	ledgerUC := inventory.NewLedgerUseCase(
		snapshot.NewRunner(store), store, ids, coordinator,
		inventory.WithPDFGenerator(infrapdf.NewMarotoLabelGenerator()),
		inventory.WithRecorder(m),
		inventory.WithLogger(log),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:  ledgerUC,
		Log:       log,
		JWTSecret: cfg.JWT.Secret,
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: entradas y salidas sin autenticación")
	}

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
