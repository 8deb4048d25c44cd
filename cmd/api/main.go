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
	"github.com/hibiken/asynq"

	"github.com/jhoicas/retail-ops-api/internal/application/auth"
	"github.com/jhoicas/retail-ops-api/internal/application/report"
	"github.com/jhoicas/retail-ops-api/internal/application/settings"
	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/application/usecase"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/cache"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/retail-ops-api/internal/infrastructure/pdf"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/queue"
	httpRouter "github.com/jhoicas/retail-ops-api/internal/interfaces/http"
	"github.com/jhoicas/retail-ops-api/pkg/config"
	"github.com/jhoicas/retail-ops-api/pkg/logger"
)

// backend repositorios y unidad atómica del driver elegido.
type backend struct {
	tx        transfer.TxRunner
	stock     repository.StockItemRepository
	requests  repository.StockRequestRepository
	transfers repository.StockTransferRepository
	settings  repository.ApprovalSettingsRepository
	users     repository.UserRepository
	checks    map[string]httpRouter.HealthCheck
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacenamiento")
	}
	defer be.close()

	// Redis es opcional: sin él no hay caché de configuración ni reintentos diferidos.
	var settingsCache settings.Cache
	var failureQueue transfer.FailureQueue
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, se continúa sin caché ni cola")
		} else {
			defer rdb.Close()
			settingsCache = cache.NewSettingsCache(rdb, cfg.Redis.SettingsCacheTTL)
			be.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

			qc := queue.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, cfg.Worker.MaxRetry)
			defer qc.Close()
			failureQueue = qc
		}
	}

	settingsSvc := settings.NewService(be.settings, settingsCache, settings.Defaults{
		RequireApproval:  cfg.Approval.RequireApproval,
		AutoApproveBelow: cfg.Approval.AutoApproveBelow,
		AllowedLocations: cfg.Approval.Locations,
	}, log.Component("settings"))

	executor := transfer.NewExecutorUseCase(be.tx, be.requests, settingsSvc, failureQueue, log.Component("executor"))
	intake := transfer.NewIntakeUseCase(be.stock, be.requests, settingsSvc, executor, log.Component("intake"))
	history := transfer.NewHistoryUseCase(be.requests, be.transfers, settingsSvc)
	reports := report.NewHistoryReportUseCase(history, infrapdf.NewMarotoPDFGenerator())
	stockUC := usecase.NewStockUseCase(be.stock, settingsSvc)
	userUC := usecase.NewUserUseCase(be.users, settingsSvc)
	authUC := auth.NewAuthUseCase(be.users, settingsSvc, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	if cfg.Bootstrap.AdminEmail != "" {
		created, err := authUC.EnsureAdmin(ctx, auth.BootstrapAdmin{
			CompanyID: cfg.Bootstrap.CompanyID,
			Email:     cfg.Bootstrap.AdminEmail,
			Password:  cfg.Bootstrap.AdminPassword,
			Name:      cfg.Bootstrap.AdminName,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("crear superadmin inicial")
		}
		if created {
			log.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("superadmin inicial creado")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Retail Ops API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		StockUC:      stockUC,
		UserUC:       userUC,
		Intake:       intake,
		Executor:     executor,
		History:      history,
		Reports:      reports,
		Settings:     settingsSvc,
		HealthChecks: be.checks,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log.Component("http"),
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

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		store := memory.NewStore()
		return &backend{
			tx:        store,
			stock:     store.StockItems(),
			requests:  store.StockRequests(),
			transfers: store.StockTransfers(),
			settings:  store.ApprovalSettings(),
			users:     store.Users(),
			checks:    map[string]httpRouter.HealthCheck{},
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &backend{
		tx:        postgres.NewTxRunner(pool),
		stock:     postgres.NewStockItemRepository(pool),
		requests:  postgres.NewStockRequestRepository(pool),
		transfers: postgres.NewStockTransferRepository(pool),
		settings:  postgres.NewApprovalSettingsRepository(pool),
		users:     postgres.NewUserRepository(pool),
		checks:    map[string]httpRouter.HealthCheck{"postgres": pool.Ping},
		close:     pool.Close,
	}, nil
}
