package transfer

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
	domaintransfer "github.com/jhoicas/retail-ops-api/internal/domain/transfer"
)

// ValidationError errores de entrada por campo (clave = nombre JSON del campo). No hubo escritura.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validación: " + strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, domain.ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// IntakeUseCase recibe y persiste solicitudes de traslado en estado pending.
type IntakeUseCase struct {
	stockRepo   repository.StockItemRepository
	requestRepo repository.StockRequestRepository
	settings    SettingsProvider
	executor    *ExecutorUseCase
	validate    *validator.Validate
	log         zerolog.Logger
	now         func() time.Time
}

// NewIntakeUseCase construye el caso de uso. executor se usa solo cuando la empresa
// desactivó la aprobación obligatoria.
func NewIntakeUseCase(
	stockRepo repository.StockItemRepository,
	requestRepo repository.StockRequestRepository,
	settings SettingsProvider,
	executor *ExecutorUseCase,
	log zerolog.Logger,
) *IntakeUseCase {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &IntakeUseCase{
		stockRepo:   stockRepo,
		requestRepo: requestRepo,
		settings:    settings,
		executor:    executor,
		validate:    v,
		log:         log,
		now:         time.Now,
	}
}

// SubmitTransferRequest valida la entrada y persiste la solicitud en pending.
// La existencia de stock en origen no se exige aquí: se resuelve de nuevo al aprobar.
func (uc *IntakeUseCase) SubmitTransferRequest(ctx context.Context, companyID string, in dto.SubmitTransferRequest, requester entity.Principal) (*dto.SubmitTransferResponse, error) {
	settings, err := uc.settings.Current(ctx, companyID)
	if err != nil {
		return nil, err
	}

	in.ItemCode = strings.TrimSpace(in.ItemCode)
	in.FromLocation = entity.NormalizeLocation(in.FromLocation)
	in.ToLocation = entity.NormalizeLocation(in.ToLocation)
	if vErr := uc.validateInput(in, settings.Locations()); vErr != nil {
		return nil, vErr
	}

	source, err := uc.stockRepo.FindActive(ctx, companyID, in.ItemCode, in.FromLocation)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	req := &entity.StockRequest{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		ItemCode:     in.ItemCode,
		Quantity:     int(in.Quantity),
		FromLocation: in.FromLocation,
		ToLocation:   in.ToLocation,
		Status:       entity.RequestStatusPending,
		RequestedBy:  requester,
		RequestedAt:  now,
		UpdatedAt:    now,
	}
	if source != nil {
		req.SourceStockID = source.ID
		req.Brand = source.Brand
		req.Model = source.Model
	}
	if err := uc.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	out := &dto.SubmitTransferResponse{Request: toRequestResponse(req, settings)}
	if settings.RequireApproval || uc.executor == nil || !domaintransfer.IsAutoApprovable(req.Quantity, settings) {
		return out, nil
	}

	// Sin aprobación obligatoria: la política ejecuta el traslado en el acto.
	result, err := uc.executor.ApproveTransfer(ctx, companyID, req.ID, requester)
	if result != nil {
		out.Execution = result
		out.Request.Status = result.Status
		out.Request.AutoApprovable = false
	}
	if err != nil {
		uc.log.Warn().Err(err).
			Str("company_id", companyID).
			Str("request_id", req.ID).
			Msg("auto-ejecución de traslado falló")
		out.ExecutionError = ErrorCode(err)
	}
	return out, nil
}

func (uc *IntakeUseCase) validateInput(in dto.SubmitTransferRequest, allowed []string) error {
	fields := map[string]string{}
	if err := uc.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	if _, ok := fields["quantity"]; !ok && in.Quantity != math.Trunc(in.Quantity) {
		fields["quantity"] = "la cantidad debe ser un entero mayor a 1"
	}
	for field, loc := range map[string]string{"from_location": in.FromLocation, "to_location": in.ToLocation} {
		if _, ok := fields[field]; ok {
			continue
		}
		if !entity.IsAllowedLocation(loc, allowed) {
			fields[field] = "ubicación no permitida"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " es requerido"
	case "gt":
		return "la cantidad debe ser un entero mayor a 1"
	case "lte":
		return "la cantidad excede el máximo permitido"
	case "nefield":
		return "origen y destino deben ser distintos"
	default:
		return "valor inválido"
	}
}
