package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ops-api/internal/application/dto"
	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/domain"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorTable orden importa: los más específicos primero.
var errorTable = []errorMapping{
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "la cantidad debe ser mayor a 1"},
	{domain.ErrInvalidRequest, fiber.StatusBadRequest, "INVALID_INPUT", "solicitud de traslado incompleta"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT", "datos inválidos"},
	{domain.ErrRequestNotPending, fiber.StatusConflict, "REQUEST_NOT_PENDING", "la solicitud ya no está pendiente"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND", "usuario no encontrado"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "el recurso ya existe"},
	{domain.ErrCommitFailed, fiber.StatusInternalServerError, "COMMIT_FAILED", "no se pudo confirmar el traslado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual, reintente"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
}

// writeError traduce errores de los casos de uso a dto.ErrorResponse. Los 5xx se registran.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var vErr *transfer.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "datos inválidos",
			Fields:  vErr.Fields,
		})
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			if m.status >= fiber.StatusInternalServerError {
				logServerError(c, log, err)
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	logServerError(c, log, err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func logServerError(c *fiber.Ctx, log zerolog.Logger, err error) {
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("company_id", GetCompanyID(c)).
		Msg("error atendiendo request")
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
