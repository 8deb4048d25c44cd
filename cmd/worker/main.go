package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/retail-ops-api/internal/application/settings"
	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-ops-api/internal/infrastructure/queue"
	"github.com/jhoicas/retail-ops-api/pkg/config"
	"github.com/jhoicas/retail-ops-api/pkg/logger"
)

// worker drena la cola de anotaciones de fallo: marca como failed las solicitudes cuyo
// traslado no se confirmó y cuya anotación en línea tampoco pudo escribirse.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "worker",
	})

	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR es requerido para el worker")
	}
	if cfg.App.StoreDriver != config.StoreDriverPostgres {
		log.Fatal().Str("store", cfg.App.StoreDriver).Msg("el worker solo funciona con STORE_DRIVER=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	requestRepo := postgres.NewStockRequestRepository(pool)
	settingsSvc := settings.NewService(postgres.NewApprovalSettingsRepository(pool), nil, settings.Defaults{
		RequireApproval:  cfg.Approval.RequireApproval,
		AutoApproveBelow: cfg.Approval.AutoApproveBelow,
		AllowedLocations: cfg.Approval.Locations,
	}, log.Component("settings"))
	// Sin cola propia: si RecordFailure falla, asynq reintenta la tarea.
	executor := transfer.NewExecutorUseCase(postgres.NewTxRunner(pool), requestRepo, settingsSvc, nil, log.Component("executor"))

	w := queue.NewWorker(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		cfg.Worker.Concurrency,
		executor,
		log.Component("worker"),
	)
	log.Info().Int("concurrency", cfg.Worker.Concurrency).Msg("worker iniciado")
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
