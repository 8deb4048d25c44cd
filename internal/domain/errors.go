package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")

	// Errores del flujo de traslados.
	ErrInvalidRequest    = errors.New("solicitud de traslado incompleta")
	ErrInvalidQuantity   = errors.New("la cantidad debe ser mayor a 1")
	ErrRequestNotPending = errors.New("la solicitud ya no está pendiente")
	ErrCommitFailed      = errors.New("no se pudo confirmar el traslado")
)
