package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/application/report"
	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

// TransferHandler solicitudes de traslado, aprobación e historial (protegido).
type TransferHandler struct {
	intake   *transfer.IntakeUseCase
	executor *transfer.ExecutorUseCase
	history  *transfer.HistoryUseCase
	reports  *report.HistoryReportUseCase
	log      zerolog.Logger
}

// NewTransferHandler construye el handler. reports puede ser nil (sin exportación PDF).
func NewTransferHandler(
	intake *transfer.IntakeUseCase,
	executor *transfer.ExecutorUseCase,
	history *transfer.HistoryUseCase,
	reports *report.HistoryReportUseCase,
	log zerolog.Logger,
) *TransferHandler {
	return &TransferHandler{intake: intake, executor: executor, history: history, reports: reports, log: log}
}

// Submit godoc
// @Summary      Crear solicitud de traslado
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SubmitTransferRequest  true  "item_code, quantity, from_location, to_location"
// @Success      201   {object}  dto.SubmitTransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers/requests [post]
func (h *TransferHandler) Submit(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.SubmitTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.intake.SubmitTransferRequest(c.Context(), companyID, in, GetPrincipal(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListRequests godoc
// @Summary      Listar solicitudes (por defecto pendientes) con elegibilidad de auto-aprobación
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "pending | approved | rejected | failed | all"
// @Param        limit   query  int     false  "máx 100"
// @Param        offset  query  int     false  "offset"
// @Success      200  {object}  dto.StockRequestListResponse
// @Router       /api/transfers/requests [get]
func (h *TransferHandler) ListRequests(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	status := strings.ToLower(c.Query("status", entity.RequestStatusPending))
	if status == "all" {
		status = ""
	}
	out, err := h.history.ListRequests(c.Context(), companyID, status, pageFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetRequest godoc
// @Summary      Detalle de una solicitud
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.StockRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/requests/{id} [get]
func (h *TransferHandler) GetRequest(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.history.GetRequest(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar y ejecutar un traslado
// @Description  Un rechazo por stock insuficiente o ítem inexistente es un resultado normal (200, success=false).
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.TransferResult
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/transfers/requests/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.executor.ApproveTransfer(c.Context(), companyID, c.Params("id"), GetPrincipal(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar una solicitud
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                     true   "ID de la solicitud"
// @Param        body  body  dto.RejectTransferRequest  false  "motivo"
// @Success      200  {object}  dto.TransferResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/requests/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.RejectTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.executor.RejectTransfer(c.Context(), companyID, c.Params("id"), in.Reason, GetPrincipal(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ApproveBatch godoc
// @Summary      Aprobar varias solicitudes (cada una en su propia unidad atómica)
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.BatchApproveRequest  true  "request_ids"
// @Success      200  {object}  dto.BatchResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers/requests/approve-batch [post]
func (h *TransferHandler) ApproveBatch(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.BatchApproveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if len(in.RequestIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION_ERROR", Message: "request_ids requerido",
			Fields: map[string]string{"request_ids": "request_ids es requerido"}})
	}
	out := h.executor.ApproveBatch(c.Context(), companyID, in.RequestIDs, GetPrincipal(c))
	return c.JSON(out)
}

// AutoApprove godoc
// @Summary      Aprobar todas las pendientes que califican para auto-aprobación
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.BatchResult
// @Router       /api/transfers/requests/auto-approve [post]
func (h *TransferHandler) AutoApprove(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.executor.AutoApproveEligible(c.Context(), companyID, GetPrincipal(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de traslados (más reciente primero)
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Param        type       query  string  false  "approved_transfer | rejected_transfer | failed_transfer"
// @Param        location   query  string  false  "origen o destino"
// @Param        item_code  query  string  false  "código"
// @Param        from       query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to         query  string  false  "RFC3339 o YYYY-MM-DD"
// @Success      200  {object}  dto.TransferHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers/history [get]
func (h *TransferHandler) History(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	q, fields := historyQuery(c)
	if len(fields) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION_ERROR", Message: "filtros inválidos", Fields: fields})
	}
	out, err := h.history.ListHistory(c.Context(), companyID, q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// HistoryPDF godoc
// @Summary      Descargar el historial filtrado en PDF
// @Tags         transfers
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers/history/pdf [get]
func (h *TransferHandler) HistoryPDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if h.reports == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_AVAILABLE", Message: "exportación PDF no configurada"})
	}
	q, fields := historyQuery(c)
	if len(fields) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION_ERROR", Message: "filtros inválidos", Fields: fields})
	}
	pdfBytes, filename, err := h.reports.TransferHistoryPDF(c.Context(), companyID, q, GetPrincipal(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// Summary godoc
// @Summary      Conteos para el panel de aprobaciones
// @Tags         transfers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.TransferSummaryResponse
// @Router       /api/transfers/summary [get]
func (h *TransferHandler) Summary(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.history.Summary(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}

// historyQuery lee los filtros del historial; devuelve errores por campo si las fechas no parsean.
func historyQuery(c *fiber.Ctx) (dto.TransferHistoryQuery, map[string]string) {
	q := dto.TransferHistoryQuery{
		Type:     c.Query("type"),
		Location: c.Query("location"),
		ItemCode: c.Query("item_code"),
		Page:     pageFromQuery(c),
	}
	fields := map[string]string{}
	if v := c.Query("from"); v != "" {
		t, ok := parseDate(v, false)
		if !ok {
			fields["from"] = "fecha inválida (RFC3339 o YYYY-MM-DD)"
		} else {
			q.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		t, ok := parseDate(v, true)
		if !ok {
			fields["to"] = "fecha inválida (RFC3339 o YYYY-MM-DD)"
		} else {
			q.To = &t
		}
	}
	switch q.Type {
	case "", entity.TransferTypeApproved, entity.TransferTypeRejected, entity.TransferTypeFailed:
	default:
		fields["type"] = "tipo desconocido"
	}
	return q, fields
}

// parseDate acepta RFC3339 o una fecha; con endOfDay una fecha sola cubre el día completo.
func parseDate(v string, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}
