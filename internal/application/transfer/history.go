package transfer

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
	domaintransfer "github.com/jhoicas/retail-ops-api/internal/domain/transfer"
)

// HistoryUseCase consultas de solicitudes y del historial append-only.
type HistoryUseCase struct {
	requestRepo  repository.StockRequestRepository
	transferRepo repository.StockTransferRepository
	settings     SettingsProvider
}

// NewHistoryUseCase construye el caso de uso de consultas.
func NewHistoryUseCase(
	requestRepo repository.StockRequestRepository,
	transferRepo repository.StockTransferRepository,
	settings SettingsProvider,
) *HistoryUseCase {
	return &HistoryUseCase{requestRepo: requestRepo, transferRepo: transferRepo, settings: settings}
}

// ListHistory lista registros del historial, más reciente primero.
func (uc *HistoryUseCase) ListHistory(ctx context.Context, companyID string, q dto.TransferHistoryQuery) (*dto.TransferHistoryResponse, error) {
	switch q.Type {
	case "", entity.TransferTypeApproved, entity.TransferTypeRejected, entity.TransferTypeFailed:
	default:
		return nil, domain.ErrInvalidInput
	}
	q.Page.DefaultPage()
	list, err := uc.transferRepo.List(ctx, repository.TransferFilter{
		CompanyID: companyID,
		Type:      q.Type,
		Location:  entity.NormalizeLocation(q.Location),
		ItemCode:  strings.TrimSpace(q.ItemCode),
		From:      q.From,
		To:        q.To,
		Limit:     q.Page.Limit,
		Offset:    q.Page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockTransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toTransferResponse(t))
	}
	return &dto.TransferHistoryResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Page.Limit, Offset: q.Page.Offset},
	}, nil
}

// GetRequest devuelve una solicitud de la empresa con su elegibilidad actual.
func (uc *HistoryUseCase) GetRequest(ctx context.Context, companyID, requestID string) (*dto.StockRequestResponse, error) {
	req, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	settings, err := uc.settings.Current(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := toRequestResponse(req, settings)
	return &out, nil
}

// ListRequests lista solicitudes en orden de llegada marcando cuáles califican para auto-aprobación.
// EligibleCount se calcula sobre todas las pendientes, no solo la página.
func (uc *HistoryUseCase) ListRequests(ctx context.Context, companyID, status string, page dto.PageRequest) (*dto.StockRequestListResponse, error) {
	switch status {
	case "", entity.RequestStatusPending, entity.RequestStatusApproved, entity.RequestStatusRejected, entity.RequestStatusFailed:
	default:
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	settings, err := uc.settings.Current(ctx, companyID)
	if err != nil {
		return nil, err
	}
	list, err := uc.requestRepo.ListByStatus(ctx, companyID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	eligible, err := uc.countEligible(ctx, companyID, settings)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockRequestResponse, 0, len(list))
	for _, r := range list {
		items = append(items, toRequestResponse(r, settings))
	}
	return &dto.StockRequestListResponse{
		Items:         items,
		EligibleCount: eligible,
		Page:          dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func (uc *HistoryUseCase) countEligible(ctx context.Context, companyID string, settings entity.ApprovalSettings) (int, error) {
	pending, err := uc.requestRepo.ListByStatus(ctx, companyID, entity.RequestStatusPending, 0, 0)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range pending {
		if domaintransfer.IsRequestAutoApprovable(r, settings) {
			n++
		}
	}
	return n, nil
}

// Summary conteos por estado y elegibles para el panel de aprobaciones.
func (uc *HistoryUseCase) Summary(ctx context.Context, companyID string) (*dto.TransferSummaryResponse, error) {
	var (
		counts   map[string]int
		eligible int
		settings entity.ApprovalSettings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = uc.requestRepo.CountByStatus(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = uc.settings.Current(gctx, companyID)
		if err != nil {
			return err
		}
		eligible, err = uc.countEligible(gctx, companyID, settings)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dto.TransferSummaryResponse{
		Pending:          counts[entity.RequestStatusPending],
		EligibleForAuto:  eligible,
		Approved:         counts[entity.RequestStatusApproved],
		Rejected:         counts[entity.RequestStatusRejected],
		Failed:           counts[entity.RequestStatusFailed],
		AutoApproveBelow: settings.AutoApproveBelow,
	}, nil
}
