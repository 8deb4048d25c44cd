package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

// TransferFilter filtros del historial de traslados.
type TransferFilter struct {
	CompanyID string
	Type      string // approved_transfer, rejected_transfer, failed_transfer; vacío = todos
	Location  string // coincide con origen o destino
	ItemCode  string
	RequestID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockTransferRepository historial append-only: no expone Update ni Delete.
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	// List devuelve los registros del más reciente al más antiguo.
	List(ctx context.Context, filter TransferFilter) ([]*entity.StockTransfer, error)
}
