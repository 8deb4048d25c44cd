package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStamp anotación del último traslado que tocó una línea de stock.
// Location es la contraparte: destino en LastTransferOut, origen en LastTransferIn.
type TransferStamp struct {
	Location  string    `json:"location"`
	Quantity  int       `json:"quantity"`
	At        time.Time `json:"at"`
	By        Principal `json:"by"`
	RequestID string    `json:"request_id"`
}

// StockItem una línea de inventario por par (ItemCode, Location) dentro de una empresa.
// Quantity nunca es negativa. Version se incrementa en cada escritura y se usa como
// compare-and-set dentro de la unidad atómica del traslado.
type StockItem struct {
	ID              string
	CompanyID       string
	ItemCode        string
	Brand           string
	Model           string
	Category        string
	Quantity        int
	CostPrice       decimal.Decimal
	RetailPrice     decimal.Decimal
	WholesalePrice  decimal.Decimal
	MinStockLevel   int
	ReorderQuantity int
	Location        string
	IsActive        bool
	Version         int64
	LastTransferIn  *TransferStamp
	LastTransferOut *TransferStamp
	TransferredFrom string // ubicación origen si la línea nació de un traslado
	OriginalStockID string // línea de stock origen si la línea nació de un traslado
	AddedBy         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CloneForLocation crea la línea destino de un traslado copiando los campos descriptivos.
func (s *StockItem) CloneForLocation(id, location string, quantity int, now time.Time, by Principal) *StockItem {
	return &StockItem{
		ID:              id,
		CompanyID:       s.CompanyID,
		ItemCode:        s.ItemCode,
		Brand:           s.Brand,
		Model:           s.Model,
		Category:        s.Category,
		Quantity:        quantity,
		CostPrice:       s.CostPrice,
		RetailPrice:     s.RetailPrice,
		WholesalePrice:  s.WholesalePrice,
		MinStockLevel:   s.MinStockLevel,
		ReorderQuantity: s.ReorderQuantity,
		Location:        location,
		IsActive:        true,
		TransferredFrom: s.Location,
		OriginalStockID: s.ID,
		AddedBy:         by.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
