package queue

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker envuelve el servidor asynq que drena la cola de traslados.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    zerolog.Logger
}

// NewWorker registra el handler de anotaciones de fallo.
func NewWorker(redisOpt asynq.RedisClientOpt, concurrency int, recorder FailureRecorder, log zerolog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 2
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueTransfers: 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, t *asynq.Task, err error) {
			log.Error().Err(err).Str("task", t.Type()).Msg("tarea fallida")
		}),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskRecordTransferFailure, HandleRecordFailureTask(recorder, log))
	return &Worker{server: srv, mux: mux, log: log}
}

// Run inicia el servidor y procesa tareas hasta que ctx se cancele.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: no configurado")
	}
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.log.Info().Msg("deteniendo worker")
	w.server.Shutdown()
	return ctx.Err()
}
