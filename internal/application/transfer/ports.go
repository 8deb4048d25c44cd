package transfer

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad atómica, pasando repositorios atados a ella.
// Si fn devuelve error no queda ninguna escritura visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockItemRepository,
		requestRepo repository.StockRequestRepository,
		transferRepo repository.StockTransferRepository,
	) error) error
}

// SettingsProvider entrega la configuración de aprobación vigente de una empresa.
type SettingsProvider interface {
	Current(ctx context.Context, companyID string) (entity.ApprovalSettings, error)
}

// FailureAnnotation datos para marcar una solicitud como failed tras un error de commit.
type FailureAnnotation struct {
	CompanyID string           `json:"company_id"`
	RequestID string           `json:"request_id"`
	Reason    string           `json:"reason"`
	Actor     entity.Principal `json:"actor"`
	At        time.Time        `json:"at"`
}

// FailureQueue difiere la anotación de fallo cuando no se pudo escribir en línea.
type FailureQueue interface {
	EnqueueFailure(ctx context.Context, ann FailureAnnotation) error
}
