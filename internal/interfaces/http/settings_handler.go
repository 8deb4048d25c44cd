package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/application/settings"
)

// SettingsHandler configuración de aprobación de la empresa (protegido).
type SettingsHandler struct {
	svc *settings.Service
	log zerolog.Logger
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(svc *settings.Service, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, log: log}
}

// Get godoc
// @Summary      Configuración de aprobación vigente
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ApprovalSettingsResponse
// @Router       /api/settings/approval [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.svc.Get(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Guardar configuración de aprobación (campos omitidos no cambian)
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateApprovalSettingsRequest  true  "require_approval, auto_approve_below, allowed_locations"
// @Success      200  {object}  dto.ApprovalSettingsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/settings/approval [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateApprovalSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Save(c.Context(), companyID, in, GetPrincipal(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reload godoc
// @Summary      Descartar la caché y releer la configuración
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ApprovalSettingsResponse
// @Router       /api/settings/approval/reload [post]
func (h *SettingsHandler) Reload(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.svc.Reload(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

