package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/domain"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
	"github.com/jhoicas/retail-ops-api/internal/domain/repository"
)

// StockUseCase alta y consulta de líneas de stock por ubicación.
type StockUseCase struct {
	repo     repository.StockItemRepository
	settings transfer.SettingsProvider
	validate *validator.Validate
	now      func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(repo repository.StockItemRepository, settings transfer.SettingsProvider) *StockUseCase {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &StockUseCase{repo: repo, settings: settings, validate: v, now: time.Now}
}

// Create registra una línea de stock. ErrDuplicate si ya existe una activa para (item_code, location).
func (uc *StockUseCase) Create(ctx context.Context, companyID string, in dto.CreateStockItemRequest, by entity.Principal) (*dto.StockItemResponse, error) {
	in.ItemCode = strings.TrimSpace(in.ItemCode)
	in.Location = entity.NormalizeLocation(in.Location)
	settings, err := uc.settings.Current(ctx, companyID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if err := uc.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Field() + " inválido (" + fe.Tag() + ")"
		}
	}
	if _, ok := fields["location"]; !ok && !entity.IsAllowedLocation(in.Location, settings.Locations()) {
		fields["location"] = "ubicación no permitida"
	}
	for name, price := range map[string]bool{
		"cost_price":      in.CostPrice.IsNegative(),
		"retail_price":    in.RetailPrice.IsNegative(),
		"wholesale_price": in.WholesalePrice.IsNegative(),
	} {
		if price {
			fields[name] = name + " no puede ser negativo"
		}
	}
	if len(fields) > 0 {
		return nil, &transfer.ValidationError{Fields: fields}
	}

	now := uc.now()
	item := &entity.StockItem{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		ItemCode:        in.ItemCode,
		Brand:           strings.TrimSpace(in.Brand),
		Model:           strings.TrimSpace(in.Model),
		Category:        strings.TrimSpace(in.Category),
		Quantity:        in.Quantity,
		CostPrice:       in.CostPrice,
		RetailPrice:     in.RetailPrice,
		WholesalePrice:  in.WholesalePrice,
		MinStockLevel:   in.MinStockLevel,
		ReorderQuantity: in.ReorderQuantity,
		Location:        in.Location,
		IsActive:        true,
		AddedBy:         by.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return toStockItemResponse(item), nil
}

// GetByID obtiene una línea de stock de la empresa. ErrNotFound si no existe o es de otra empresa.
func (uc *StockUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.StockItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return toStockItemResponse(item), nil
}

// List lista las líneas activas por empresa con filtros opcionales de ubicación y código.
func (uc *StockUseCase) List(ctx context.Context, companyID, location, itemCode string, page dto.PageRequest) (*dto.StockItemListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.StockItemFilter{
		CompanyID:  companyID,
		Location:   entity.NormalizeLocation(location),
		ItemCode:   strings.TrimSpace(itemCode),
		OnlyActive: true,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toStockItemResponse(it))
	}
	return &dto.StockItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func toStockItemResponse(s *entity.StockItem) *dto.StockItemResponse {
	if s == nil {
		return nil
	}
	return &dto.StockItemResponse{
		ID:              s.ID,
		ItemCode:        s.ItemCode,
		Brand:           s.Brand,
		Model:           s.Model,
		Category:        s.Category,
		Quantity:        s.Quantity,
		CostPrice:       s.CostPrice,
		RetailPrice:     s.RetailPrice,
		WholesalePrice:  s.WholesalePrice,
		MinStockLevel:   s.MinStockLevel,
		ReorderQuantity: s.ReorderQuantity,
		Location:        s.Location,
		IsActive:        s.IsActive,
		LowStock:        s.Quantity <= s.MinStockLevel,
		TransferredFrom: s.TransferredFrom,
		OriginalStockID: s.OriginalStockID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
