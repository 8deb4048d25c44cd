// Package report genera documentos descargables a partir del historial de traslados.
package report

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

// TransferHistoryReport datos que recibe el generador de PDF.
type TransferHistoryReport struct {
	CompanyID   string
	GeneratedAt time.Time
	GeneratedBy entity.Principal
	Filters     dto.TransferHistoryQuery
	Summary     dto.TransferSummaryResponse
	Items       []dto.StockTransferResponse
	Truncated   bool
}

// TransferHistoryPDFGenerator define el contrato para renderizar el historial en PDF.
type TransferHistoryPDFGenerator interface {
	GenerateTransferHistoryPDF(ctx context.Context, report TransferHistoryReport) ([]byte, error)
}

// HistoryReader consultas que necesita el reporte.
type HistoryReader interface {
	ListHistory(ctx context.Context, companyID string, q dto.TransferHistoryQuery) (*dto.TransferHistoryResponse, error)
	Summary(ctx context.Context, companyID string) (*dto.TransferSummaryResponse, error)
}
