package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

const (
	pageSize = 100
	// MaxReportRows tope de registros por documento.
	MaxReportRows = 2000
)

// HistoryReportUseCase exporta el historial de traslados filtrado a PDF.
type HistoryReportUseCase struct {
	history   HistoryReader
	generator TransferHistoryPDFGenerator
	now       func() time.Time
}

// NewHistoryReportUseCase construye el caso de uso.
func NewHistoryReportUseCase(history HistoryReader, generator TransferHistoryPDFGenerator) *HistoryReportUseCase {
	return &HistoryReportUseCase{history: history, generator: generator, now: time.Now}
}

// TransferHistoryPDF recorre el historial con los filtros dados (ignorando la paginación de q)
// y devuelve el PDF con su nombre de archivo.
func (uc *HistoryReportUseCase) TransferHistoryPDF(
	ctx context.Context,
	companyID string,
	q dto.TransferHistoryQuery,
	by entity.Principal,
) (pdfBytes []byte, filename string, err error) {
	rep := TransferHistoryReport{
		CompanyID:   companyID,
		GeneratedAt: uc.now(),
		GeneratedBy: by,
		Filters:     q,
	}

	offset := 0
	for {
		q.Page = dto.PageRequest{Limit: pageSize, Offset: offset}
		page, err := uc.history.ListHistory(ctx, companyID, q)
		if err != nil {
			return nil, "", err
		}
		rep.Items = append(rep.Items, page.Items...)
		if len(rep.Items) >= MaxReportRows {
			rep.Items = rep.Items[:MaxReportRows]
			rep.Truncated = true
			break
		}
		if len(page.Items) < pageSize {
			break
		}
		offset += pageSize
	}

	summary, err := uc.history.Summary(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	rep.Summary = *summary

	pdfBytes, err = uc.generator.GenerateTransferHistoryPDF(ctx, rep)
	if err != nil {
		return nil, "", fmt.Errorf("report: generar pdf: %w", err)
	}
	filename = fmt.Sprintf("traslados_%s.pdf", rep.GeneratedAt.Format("20060102_150405"))
	return pdfBytes, filename, nil
}
