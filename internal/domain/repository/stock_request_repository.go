package repository

import (
	"context"

	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

// StockRequestRepository define el puerto de persistencia para solicitudes de traslado.
type StockRequestRepository interface {
	Create(ctx context.Context, req *entity.StockRequest) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockRequest, error)
	// UpdateStatus persiste la transición de estado solo si el estado almacenado es expectedStatus.
	// Devuelve domain.ErrConflict si otro actor ya la movió.
	UpdateStatus(ctx context.Context, req *entity.StockRequest, expectedStatus string) error
	// ListByStatus lista en orden de inserción (requested_at ascendente). status vacío = todos.
	ListByStatus(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.StockRequest, error)
	// CountByStatus cuenta solicitudes por estado para la empresa.
	CountByStatus(ctx context.Context, companyID string) (map[string]int, error)
}
