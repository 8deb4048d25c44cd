// Package queue encola y procesa con asynq las anotaciones de fallo que no pudieron
// escribirse en línea.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/domain"
)

const (
	// QueueTransfers cola de tareas del flujo de traslados.
	QueueTransfers = "transfers"
	// TaskRecordTransferFailure marca una solicitud como failed.
	TaskRecordTransferFailure = "transfer:record_failure"
)

// FailureRecorder lo implementa transfer.ExecutorUseCase.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, ann transfer.FailureAnnotation) error
}

// NewRecordFailureTask construye la tarea con la anotación como payload JSON.
func NewRecordFailureTask(ann transfer.FailureAnnotation) (*asynq.Task, error) {
	data, err := json.Marshal(ann)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordTransferFailure, data), nil
}

// HandleRecordFailureTask procesa TaskRecordTransferFailure. Payload inválido o solicitud
// inexistente no se reintentan.
func HandleRecordFailureTask(recorder FailureRecorder, log zerolog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var ann transfer.FailureAnnotation
		if err := json.Unmarshal(t.Payload(), &ann); err != nil {
			return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
		}
		if ann.RequestID == "" || ann.CompanyID == "" {
			return fmt.Errorf("payload sin request_id/company_id: %w", asynq.SkipRetry)
		}
		if ann.At.IsZero() {
			ann.At = time.Now()
		}
		err := recorder.RecordFailure(ctx, ann)
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("request_id", ann.RequestID).Msg("solicitud inexistente, se descarta la anotación")
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		if err != nil {
			log.Warn().Err(err).Str("request_id", ann.RequestID).Msg("anotación de fallo pendiente, asynq reintentará")
			return err
		}
		log.Info().Str("request_id", ann.RequestID).Msg("solicitud marcada como failed desde la cola")
		return nil
	}
}
