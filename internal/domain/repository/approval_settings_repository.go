package repository

import (
	"context"

	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

// ApprovalSettingsRepository persistencia de la configuración de aprobación por empresa.
type ApprovalSettingsRepository interface {
	// Get devuelve nil, nil si la empresa aún no tiene configuración.
	Get(ctx context.Context, companyID string) (*entity.ApprovalSettings, error)
	Save(ctx context.Context, settings *entity.ApprovalSettings) error
	// CreateIfAbsent inserta la configuración solo si no existe; created indica si se insertó.
	CreateIfAbsent(ctx context.Context, settings *entity.ApprovalSettings) (created bool, err error)
}
