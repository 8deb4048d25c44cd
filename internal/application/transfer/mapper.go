package transfer

import (
	"errors"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	domaintransfer "github.com/jhoicas/retail-ops-api/internal/domain/transfer"
)

// ErrorCode traduce un error de los casos de uso a un código estable para clientes.
func ErrorCode(err error) string {
	var vErr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vErr):
		return "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrRequestNotPending):
		return "REQUEST_NOT_PENDING"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrCommitFailed):
		return "COMMIT_FAILED"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidRequest):
		return "INVALID_INPUT"
	case errors.Is(err, domain.ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL"
	}
}

func toPrincipalResponse(p entity.Principal) dto.PrincipalResponse {
	return dto.PrincipalResponse{ID: p.ID, Name: p.Name, Email: p.Email}
}

func toPrincipalResponsePtr(p *entity.Principal) *dto.PrincipalResponse {
	if p == nil {
		return nil
	}
	out := toPrincipalResponse(*p)
	return &out
}

func toRequestResponse(r *entity.StockRequest, settings entity.ApprovalSettings) dto.StockRequestResponse {
	return dto.StockRequestResponse{
		ID:              r.ID,
		ItemCode:        r.ItemCode,
		Brand:           r.Brand,
		Model:           r.Model,
		Quantity:        r.Quantity,
		FromLocation:    r.FromLocation,
		ToLocation:      r.ToLocation,
		Status:          r.Status,
		SourceStockID:   r.SourceStockID,
		RequestedBy:     toPrincipalResponse(r.RequestedBy),
		RequestedAt:     r.RequestedAt,
		ApprovedBy:      toPrincipalResponsePtr(r.ApprovedBy),
		ApprovedAt:      r.ApprovedAt,
		RejectedBy:      toPrincipalResponsePtr(r.RejectedBy),
		RejectedAt:      r.RejectedAt,
		RejectionReason: r.RejectionReason,
		FailureReason:   r.FailureReason,
		FailedAt:        r.FailedAt,
		AutoApprovable:  domaintransfer.IsRequestAutoApprovable(r, settings),
	}
}

func toTransferResponse(t *entity.StockTransfer) dto.StockTransferResponse {
	return dto.StockTransferResponse{
		ID:                     t.ID,
		RequestID:              t.RequestID,
		Type:                   t.Type,
		ItemCode:               t.ItemCode,
		Brand:                  t.Brand,
		Model:                  t.Model,
		Quantity:               t.Quantity,
		FromLocation:           t.FromLocation,
		ToLocation:             t.ToLocation,
		SourceStockBefore:      t.SourceStockBefore,
		SourceStockAfter:       t.SourceStockAfter,
		DestinationStockBefore: t.DestinationStockBefore,
		DestinationStockAfter:  t.DestinationStockAfter,
		DestinationCreated:     t.DestinationCreated,
		Reason:                 t.Reason,
		TransferredBy:          toPrincipalResponse(t.TransferredBy),
		TransferredAt:          t.TransferredAt,
	}
}
