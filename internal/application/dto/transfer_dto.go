package dto

import "time"

// SubmitTransferRequest body para POST /api/transfers/requests.
// Quantity llega como número JSON; el tope es el máximo de la columna INTEGER.
type SubmitTransferRequest struct {
	ItemCode     string  `json:"item_code" validate:"required"`
	Quantity     float64 `json:"quantity" validate:"gt=1,lte=2147483647"`
	FromLocation string  `json:"from_location" validate:"required"`
	ToLocation   string  `json:"to_location" validate:"required,nefield=FromLocation"`
}

// RejectTransferRequest body para POST /api/transfers/requests/:id/reject.
type RejectTransferRequest struct {
	Reason string `json:"reason"`
}

// BatchApproveRequest body para POST /api/transfers/requests/approve-batch.
type BatchApproveRequest struct {
	RequestIDs []string `json:"request_ids"`
}

// PrincipalResponse identidad estampada en una acción.
type PrincipalResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StockRequestResponse salida de una solicitud de traslado.
type StockRequestResponse struct {
	ID              string             `json:"id"`
	ItemCode        string             `json:"item_code"`
	Brand           string             `json:"brand,omitempty"`
	Model           string             `json:"model,omitempty"`
	Quantity        int                `json:"quantity"`
	FromLocation    string             `json:"from_location"`
	ToLocation      string             `json:"to_location"`
	Status          string             `json:"status"`
	SourceStockID   string             `json:"source_stock_id,omitempty"`
	RequestedBy     PrincipalResponse  `json:"requested_by"`
	RequestedAt     time.Time          `json:"requested_at"`
	ApprovedBy      *PrincipalResponse `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	RejectedBy      *PrincipalResponse `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time         `json:"rejected_at,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	FailureReason   string             `json:"failure_reason,omitempty"`
	FailedAt        *time.Time         `json:"failed_at,omitempty"`
	AutoApprovable  bool               `json:"auto_approvable"`
}

// StockRequestListResponse listado de solicitudes con el conteo de elegibles para auto-aprobación.
type StockRequestListResponse struct {
	Items         []StockRequestResponse `json:"items"`
	EligibleCount int                    `json:"eligible_count"`
	Page          PageResponse           `json:"page"`
}

// TransferResult resultado de aprobar una solicitud.
// Un rechazo (sin stock, ítem inexistente) es un resultado normal: Success=false, Status=rejected.
type TransferResult struct {
	RequestID  string `json:"request_id"`
	Success    bool   `json:"success"`
	Status     string `json:"status"`
	TransferID string `json:"transfer_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// SubmitTransferResponse salida de la creación; Execution viene cuando la política ejecutó el traslado de inmediato.
type SubmitTransferResponse struct {
	Request        StockRequestResponse `json:"request"`
	Execution      *TransferResult      `json:"execution,omitempty"`
	ExecutionError string               `json:"execution_error,omitempty"`
}

// BatchItemResult resultado por solicitud dentro de un lote.
type BatchItemResult struct {
	RequestID  string `json:"request_id"`
	Success    bool   `json:"success"`
	Status     string `json:"status,omitempty"`
	TransferID string `json:"transfer_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult resumen de un lote de aprobaciones (sin atomicidad de lote).
type BatchResult struct {
	Items    []BatchItemResult `json:"items"`
	Approved int               `json:"approved"`
	Rejected int               `json:"rejected"`
	Errored  int               `json:"errored"`
}

// StockTransferResponse registro del historial de traslados.
type StockTransferResponse struct {
	ID                     string            `json:"id"`
	RequestID              string            `json:"request_id"`
	Type                   string            `json:"type"`
	ItemCode               string            `json:"item_code"`
	Brand                  string            `json:"brand,omitempty"`
	Model                  string            `json:"model,omitempty"`
	Quantity               int               `json:"quantity"`
	FromLocation           string            `json:"from_location"`
	ToLocation             string            `json:"to_location"`
	SourceStockBefore      int               `json:"source_stock_before"`
	SourceStockAfter       int               `json:"source_stock_after"`
	DestinationStockBefore int               `json:"destination_stock_before"`
	DestinationStockAfter  int               `json:"destination_stock_after"`
	DestinationCreated     bool              `json:"destination_created"`
	Reason                 string            `json:"reason,omitempty"`
	TransferredBy          PrincipalResponse `json:"transferred_by"`
	TransferredAt          time.Time         `json:"transferred_at"`
}

// TransferHistoryQuery filtros de GET /api/transfers/history.
type TransferHistoryQuery struct {
	Type     string     `query:"type"`
	Location string     `query:"location"`
	ItemCode string     `query:"item_code"`
	From     *time.Time `query:"-"`
	To       *time.Time `query:"-"`
	Page     PageRequest
}

// TransferHistoryResponse página del historial (más reciente primero).
type TransferHistoryResponse struct {
	Items []StockTransferResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// TransferSummaryResponse conteos para el panel de aprobaciones.
type TransferSummaryResponse struct {
	Pending          int `json:"pending"`
	EligibleForAuto  int `json:"eligible_for_auto"`
	Approved         int `json:"approved"`
	Rejected         int `json:"rejected"`
	Failed           int `json:"failed"`
	AutoApproveBelow int `json:"auto_approve_below"`
}
