package entity

import "time"

// Tipos de registro del historial de traslados.
const (
	TransferTypeApproved = "approved_transfer"
	TransferTypeRejected = "rejected_transfer"
	TransferTypeFailed   = "failed_transfer"
)

// StockTransfer registro inmutable (append-only) de cada resultado del ejecutor.
// Guarda una copia desnormalizada para que el historial siga siendo legible aunque
// la línea de stock cambie o se desactive.
type StockTransfer struct {
	ID                     string
	CompanyID              string
	RequestID              string
	ItemCode               string
	Brand                  string
	Model                  string
	Quantity               int
	FromLocation           string
	ToLocation             string
	Type                   string
	SourceStockID          string
	SourceStockBefore      int
	SourceStockAfter       int
	DestinationStockID     string
	DestinationStockBefore int
	DestinationStockAfter  int
	DestinationCreated     bool
	Reason                 string
	TransferredBy          Principal
	TransferredAt          time.Time
}
