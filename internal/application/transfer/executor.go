package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
	domaintransfer "github.com/jhoicas/retail-ops-api/internal/domain/transfer"
)

// MaxCommitAttempts intentos de la unidad atómica cuando el compare-and-set detecta una escritura concurrente.
const MaxCommitAttempts = 3

// DefaultRejectReason motivo usado cuando el aprobador no indica uno.
const DefaultRejectReason = "Rejected by approver"

// ExecutorUseCase aplica solicitudes aprobadas o rechazadas. Cada solicitud es su propia unidad atómica:
// stock origen, stock destino, estado de la solicitud y registro de historial se confirman juntos o nada.
type ExecutorUseCase struct {
	txRunner    TxRunner
	requestRepo repository.StockRequestRepository
	settings    SettingsProvider
	failures    FailureQueue
	log         zerolog.Logger
	now         func() time.Time
}

// NewExecutorUseCase construye el ejecutor. failures puede ser nil (sin reintento diferido).
func NewExecutorUseCase(
	txRunner TxRunner,
	requestRepo repository.StockRequestRepository,
	settings SettingsProvider,
	failures FailureQueue,
	log zerolog.Logger,
) *ExecutorUseCase {
	return &ExecutorUseCase{
		txRunner:    txRunner,
		requestRepo: requestRepo,
		settings:    settings,
		failures:    failures,
		log:         log,
		now:         time.Now,
	}
}

// loadPending lee la solicitud fuera de la tx para fallar rápido (no existe, otra empresa, ya resuelta).
func (uc *ExecutorUseCase) loadPending(ctx context.Context, companyID, requestID string) (*entity.StockRequest, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	req, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if !req.HasRequiredFields() {
		return nil, domain.ErrInvalidRequest
	}
	if !req.IsPending() {
		return nil, domain.ErrRequestNotPending
	}
	return req, nil
}

// ApproveTransfer ejecuta el traslado de una solicitud pendiente.
// Sin stock suficiente o sin ítem en origen la solicitud queda rejected y se devuelve un resultado sin error.
// Si la unidad atómica no se confirma se devuelve ErrCommitFailed y la solicitud se marca failed (best-effort).
func (uc *ExecutorUseCase) ApproveTransfer(ctx context.Context, companyID, requestID string, actor entity.Principal) (*dto.TransferResult, error) {
	req, err := uc.loadPending(ctx, companyID, requestID)
	if err != nil {
		return nil, err
	}
	if !domaintransfer.IsApprovableQuantity(req.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}

	var result *dto.TransferResult
	for attempt := 1; attempt <= MaxCommitAttempts; attempt++ {
		result, err = uc.approveOnce(ctx, req.ID, actor)
		if !isRetryable(err) {
			break
		}
		uc.log.Debug().Err(err).
			Str("request_id", req.ID).
			Int("attempt", attempt).
			Msg("conflicto concurrente al aprobar traslado, reintentando")
	}
	if err == nil {
		return result, nil
	}
	if errors.Is(err, domain.ErrRequestNotPending) || errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	uc.log.Error().Err(err).
		Str("company_id", companyID).
		Str("request_id", req.ID).
		Msg("no se pudo confirmar el traslado")
	uc.annotateFailure(ctx, FailureAnnotation{
		CompanyID: companyID,
		RequestID: req.ID,
		Reason:    err.Error(),
		Actor:     actor,
		At:        uc.now(),
	})
	return &dto.TransferResult{
		RequestID: req.ID,
		Success:   false,
		Status:    entity.RequestStatusFailed,
		Reason:    err.Error(),
	}, fmt.Errorf("%w: %w", domain.ErrCommitFailed, err)
}

// approveOnce un intento de la unidad atómica. Relee solicitud y stock dentro de la tx.
func (uc *ExecutorUseCase) approveOnce(ctx context.Context, requestID string, actor entity.Principal) (*dto.TransferResult, error) {
	var result *dto.TransferResult
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockItemRepository,
		requestRepo repository.StockRequestRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		req, err := requestRepo.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if !req.IsPending() {
			return domain.ErrRequestNotPending
		}
		now := uc.now()

		source, err := stockRepo.FindActive(ctx, req.CompanyID, req.ItemCode, req.FromLocation)
		if err != nil {
			return err
		}
		if source == nil {
			result, err = uc.rejectInTx(ctx, requestRepo, transferRepo, req, entity.ReasonItemNotFound, actor, now, nil)
			return err
		}
		if source.Quantity < req.Quantity {
			result, err = uc.rejectInTx(ctx, requestRepo, transferRepo, req, entity.ReasonInsufficientStock, actor, now, source)
			return err
		}

		// a. origen
		sourceBefore := source.Quantity
		source.Quantity -= req.Quantity
		source.LastTransferOut = &entity.TransferStamp{
			Location:  req.ToLocation,
			Quantity:  req.Quantity,
			At:        now,
			By:        actor,
			RequestID: req.ID,
		}
		source.UpdatedAt = now
		if err := stockRepo.UpdateQuantity(ctx, source, source.Version); err != nil {
			return err
		}

		// b. destino: se crea clonando el origen o se incrementa
		inStamp := &entity.TransferStamp{
			Location:  req.FromLocation,
			Quantity:  req.Quantity,
			At:        now,
			By:        actor,
			RequestID: req.ID,
		}
		dest, err := stockRepo.FindActive(ctx, req.CompanyID, req.ItemCode, req.ToLocation)
		if err != nil {
			return err
		}
		destBefore := 0
		destCreated := false
		if dest == nil {
			dest = source.CloneForLocation(uuid.New().String(), req.ToLocation, req.Quantity, now, actor)
			dest.LastTransferIn = inStamp
			if err := stockRepo.Create(ctx, dest); err != nil {
				return err
			}
			destCreated = true
		} else {
			destBefore = dest.Quantity
			dest.Quantity += req.Quantity
			dest.LastTransferIn = inStamp
			dest.UpdatedAt = now
			if err := stockRepo.UpdateQuantity(ctx, dest, dest.Version); err != nil {
				return err
			}
		}

		// c. solicitud
		req.Status = entity.RequestStatusApproved
		req.ApprovedBy = &actor
		req.ApprovedAt = &now
		req.SourceStockID = source.ID
		req.UpdatedAt = now
		if err := requestRepo.UpdateStatus(ctx, req, entity.RequestStatusPending); err != nil {
			return err
		}

		// d. historial
		rec := newTransferRecord(req, entity.TransferTypeApproved, actor, now)
		rec.SourceStockID = source.ID
		rec.SourceStockBefore = sourceBefore
		rec.SourceStockAfter = source.Quantity
		rec.DestinationStockID = dest.ID
		rec.DestinationStockBefore = destBefore
		rec.DestinationStockAfter = dest.Quantity
		rec.DestinationCreated = destCreated
		if err := transferRepo.Create(ctx, rec); err != nil {
			return err
		}

		result = &dto.TransferResult{
			RequestID:  req.ID,
			Success:    true,
			Status:     entity.RequestStatusApproved,
			TransferID: rec.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// rejectInTx transiciona a rejected y agrega el registro rejected_transfer en la misma unidad atómica.
func (uc *ExecutorUseCase) rejectInTx(
	ctx context.Context,
	requestRepo repository.StockRequestRepository,
	transferRepo repository.StockTransferRepository,
	req *entity.StockRequest,
	reason string,
	actor entity.Principal,
	now time.Time,
	source *entity.StockItem,
) (*dto.TransferResult, error) {
	req.Status = entity.RequestStatusRejected
	req.RejectedBy = &actor
	req.RejectedAt = &now
	req.RejectionReason = reason
	req.UpdatedAt = now
	if err := requestRepo.UpdateStatus(ctx, req, entity.RequestStatusPending); err != nil {
		return nil, err
	}

	rec := newTransferRecord(req, entity.TransferTypeRejected, actor, now)
	rec.Reason = reason
	if source != nil {
		rec.SourceStockID = source.ID
		rec.SourceStockBefore = source.Quantity
		rec.SourceStockAfter = source.Quantity
	}
	if err := transferRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return &dto.TransferResult{
		RequestID:  req.ID,
		Success:    false,
		Status:     entity.RequestStatusRejected,
		TransferID: rec.ID,
		Reason:     reason,
	}, nil
}

// RejectTransfer rechaza manualmente una solicitud pendiente. No toca inventario.
// Rechazar una solicitud ya resuelta devuelve ErrRequestNotPending sin escribir nada.
func (uc *ExecutorUseCase) RejectTransfer(ctx context.Context, companyID, requestID, reason string, actor entity.Principal) (*dto.TransferResult, error) {
	req, err := uc.loadPending(ctx, companyID, requestID)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectReason
	}

	var result *dto.TransferResult
	for attempt := 1; attempt <= MaxCommitAttempts; attempt++ {
		err = uc.txRunner.Run(ctx, func(
			stockRepo repository.StockItemRepository,
			requestRepo repository.StockRequestRepository,
			transferRepo repository.StockTransferRepository,
		) error {
			current, err := requestRepo.GetByID(ctx, req.ID)
			if err != nil {
				return err
			}
			if current == nil {
				return domain.ErrNotFound
			}
			if !current.IsPending() {
				return domain.ErrRequestNotPending
			}
			source, err := stockRepo.FindActive(ctx, current.CompanyID, current.ItemCode, current.FromLocation)
			if err != nil {
				return err
			}
			result, err = uc.rejectInTx(ctx, requestRepo, transferRepo, current, reason, actor, uc.now(), source)
			return err
		})
		if !isRetryable(err) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotPending) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		uc.log.Error().Err(err).
			Str("company_id", companyID).
			Str("request_id", req.ID).
			Msg("no se pudo confirmar el rechazo")
		return nil, fmt.Errorf("%w: %w", domain.ErrCommitFailed, err)
	}
	return result, nil
}

// RecordFailure marca la solicitud como failed y agrega el registro failed_transfer en una unidad atómica propia.
// Si la solicitud ya no está pendiente no hace nada.
func (uc *ExecutorUseCase) RecordFailure(ctx context.Context, ann FailureAnnotation) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.StockItemRepository,
		requestRepo repository.StockRequestRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		req, err := requestRepo.GetByID(ctx, ann.RequestID)
		if err != nil {
			return err
		}
		if req == nil || req.CompanyID != ann.CompanyID {
			return domain.ErrNotFound
		}
		if !req.IsPending() {
			return nil
		}
		at := ann.At
		if at.IsZero() {
			at = uc.now()
		}
		req.Status = entity.RequestStatusFailed
		req.FailureReason = ann.Reason
		req.FailedAt = &at
		req.UpdatedAt = at
		if err := requestRepo.UpdateStatus(ctx, req, entity.RequestStatusPending); err != nil {
			return err
		}
		rec := newTransferRecord(req, entity.TransferTypeFailed, ann.Actor, at)
		rec.Reason = ann.Reason
		return transferRepo.Create(ctx, rec)
	})
}

// annotateFailure intenta RecordFailure en línea; si falla encola la anotación para el worker.
func (uc *ExecutorUseCase) annotateFailure(ctx context.Context, ann FailureAnnotation) {
	err := uc.RecordFailure(ctx, ann)
	if err == nil {
		return
	}
	uc.log.Warn().Err(err).
		Str("request_id", ann.RequestID).
		Msg("no se pudo marcar la solicitud como failed, se difiere")
	if uc.failures == nil {
		uc.log.Error().Str("request_id", ann.RequestID).Msg("sin cola de reintentos: la solicitud queda pending")
		return
	}
	if err := uc.failures.EnqueueFailure(ctx, ann); err != nil {
		uc.log.Error().Err(err).
			Str("request_id", ann.RequestID).
			Msg("no se pudo encolar la anotación de fallo")
	}
}

// ApproveBatch aprueba las solicitudes en orden, una unidad atómica por solicitud.
// Un fallo individual no detiene el lote ni revierte las anteriores.
func (uc *ExecutorUseCase) ApproveBatch(ctx context.Context, companyID string, requestIDs []string, actor entity.Principal) *dto.BatchResult {
	out := &dto.BatchResult{Items: make([]dto.BatchItemResult, 0, len(requestIDs))}
	for _, id := range requestIDs {
		item := dto.BatchItemResult{RequestID: id}
		result, err := uc.ApproveTransfer(ctx, companyID, id, actor)
		if result != nil {
			item.Success = result.Success
			item.Status = result.Status
			item.TransferID = result.TransferID
			item.Reason = result.Reason
		}
		switch {
		case err != nil:
			item.ErrorCode = ErrorCode(err)
			item.Error = err.Error()
			out.Errored++
		case result.Success:
			out.Approved++
		default:
			out.Rejected++
		}
		out.Items = append(out.Items, item)
	}
	uc.log.Info().
		Str("company_id", companyID).
		Int("requested", len(requestIDs)).
		Int("approved", out.Approved).
		Int("rejected", out.Rejected).
		Int("errored", out.Errored).
		Msg("lote de aprobación procesado")
	return out
}

// AutoApproveEligible aprueba, en orden de llegada, las pendientes que cumplen la política vigente.
func (uc *ExecutorUseCase) AutoApproveEligible(ctx context.Context, companyID string, actor entity.Principal) (*dto.BatchResult, error) {
	settings, err := uc.settings.Current(ctx, companyID)
	if err != nil {
		return nil, err
	}
	pending, err := uc.requestRepo.ListByStatus(ctx, companyID, entity.RequestStatusPending, 0, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(pending))
	for _, req := range pending {
		if domaintransfer.IsRequestAutoApprovable(req, settings) {
			ids = append(ids, req.ID)
		}
	}
	return uc.ApproveBatch(ctx, companyID, ids, actor), nil
}

func newTransferRecord(req *entity.StockRequest, kind string, actor entity.Principal, at time.Time) *entity.StockTransfer {
	return &entity.StockTransfer{
		ID:            uuid.New().String(),
		CompanyID:     req.CompanyID,
		RequestID:     req.ID,
		ItemCode:      req.ItemCode,
		Brand:         req.Brand,
		Model:         req.Model,
		Quantity:      req.Quantity,
		FromLocation:  req.FromLocation,
		ToLocation:    req.ToLocation,
		Type:          kind,
		TransferredBy: actor,
		TransferredAt: at,
	}
}

// isRetryable conflictos de compare-and-set o de clave única detectados al confirmar.
func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrDuplicate)
}
