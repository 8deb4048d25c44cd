package entity

import "time"

// Estados de una solicitud de traslado. Pending transiciona exactamente una vez.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
	RequestStatusFailed   = "failed"
)

// Motivos de rechazo del ejecutor (resultado normal, no error de sistema).
const (
	ReasonItemNotFound      = "Item not found in source location"
	ReasonInsufficientStock = "Insufficient stock in source location"
)

// StockRequest intención de trasladar Quantity unidades de ItemCode entre dos ubicaciones.
type StockRequest struct {
	ID              string
	CompanyID       string
	ItemCode        string
	Brand           string
	Model           string
	Quantity        int
	FromLocation    string
	ToLocation      string
	Status          string
	RequestedBy     Principal
	RequestedAt     time.Time
	SourceStockID   string
	ApprovedBy      *Principal
	ApprovedAt      *time.Time
	RejectedBy      *Principal
	RejectedAt      *time.Time
	RejectionReason string
	FailureReason   string
	FailedAt        *time.Time
	UpdatedAt       time.Time
}

// IsPending indica si la solicitud aún no alcanzó un estado terminal.
func (r *StockRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// HasRequiredFields valida los campos mínimos que el ejecutor necesita.
func (r *StockRequest) HasRequiredFields() bool {
	return r.ID != "" && r.ItemCode != "" && r.FromLocation != "" && r.ToLocation != ""
}
