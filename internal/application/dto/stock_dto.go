package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockItemRequest body para POST /api/stock.
type CreateStockItemRequest struct {
	ItemCode        string          `json:"item_code" validate:"required"`
	Brand           string          `json:"brand"`
	Model           string          `json:"model"`
	Category        string          `json:"category"`
	Quantity        int             `json:"quantity" validate:"min=0,lte=2147483647"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	RetailPrice     decimal.Decimal `json:"retail_price"`
	WholesalePrice  decimal.Decimal `json:"wholesale_price"`
	MinStockLevel   int             `json:"min_stock_level" validate:"min=0,lte=2147483647"`
	ReorderQuantity int             `json:"reorder_quantity" validate:"min=0,lte=2147483647"`
	Location        string          `json:"location" validate:"required"`
}

// StockItemResponse salida de una línea de stock.
type StockItemResponse struct {
	ID              string          `json:"id"`
	ItemCode        string          `json:"item_code"`
	Brand           string          `json:"brand"`
	Model           string          `json:"model"`
	Category        string          `json:"category"`
	Quantity        int             `json:"quantity"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	RetailPrice     decimal.Decimal `json:"retail_price"`
	WholesalePrice  decimal.Decimal `json:"wholesale_price"`
	MinStockLevel   int             `json:"min_stock_level"`
	ReorderQuantity int             `json:"reorder_quantity"`
	Location        string          `json:"location"`
	IsActive        bool            `json:"is_active"`
	LowStock        bool            `json:"low_stock"`
	TransferredFrom string          `json:"transferred_from,omitempty"`
	OriginalStockID string          `json:"original_stock_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StockItemListResponse lista paginada de stock.
type StockItemListResponse struct {
	Items []StockItemResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
