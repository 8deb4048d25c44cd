package repository

import (
	"context"

	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

// StockItemFilter filtros para listar líneas de stock.
type StockItemFilter struct {
	CompanyID  string
	Location   string // vacío = todas
	ItemCode   string // vacío = todos
	OnlyActive bool
	Limit      int
	Offset     int
}

// StockItemRepository define el puerto de persistencia para StockItem.
// (CompanyID, ItemCode, Location) identifica como máximo una línea activa.
type StockItemRepository interface {
	// Create inserta una línea nueva; ErrDuplicate si ya existe una activa con la misma clave.
	Create(ctx context.Context, item *entity.StockItem) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockItem, error)
	// FindActive busca la línea activa por clave compuesta; nil, nil si no existe.
	FindActive(ctx context.Context, companyID, itemCode, location string) (*entity.StockItem, error)
	// UpdateQuantity escribe Quantity y las anotaciones de traslado solo si la versión almacenada
	// coincide con expectedVersion (compare-and-set). Devuelve domain.ErrConflict si no coincide.
	// En éxito item.Version queda en expectedVersion+1.
	UpdateQuantity(ctx context.Context, item *entity.StockItem, expectedVersion int64) error
	List(ctx context.Context, filter StockItemFilter) ([]*entity.StockItem, error)
}
