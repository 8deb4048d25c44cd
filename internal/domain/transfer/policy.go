// Package transfer contiene las reglas puras del flujo de traslados (servicio de dominio, sin I/O).
package transfer

import "github.com/jhoicas/retail-ops-api/internal/domain/entity"

// MinApprovableQuantity cantidad mínima (exclusiva) para cualquier aprobación.
// Una solicitud de 1 unidad o menos siempre requiere revisión manual y nunca se aprueba.
const MinApprovableQuantity = 1

// IsApprovableQuantity piso de cantidad compartido por el evaluador y el ejecutor.
func IsApprovableQuantity(quantity int) bool {
	return quantity > MinApprovableQuantity
}

// IsAutoApprovable decide si una solicitud califica para auto-aprobación:
// 1 < quantity <= settings.AutoApproveBelow.
func IsAutoApprovable(quantity int, settings entity.ApprovalSettings) bool {
	return IsApprovableQuantity(quantity) && quantity <= settings.AutoApproveBelow
}

// IsRequestAutoApprovable aplica IsAutoApprovable a una solicitud pendiente.
func IsRequestAutoApprovable(req *entity.StockRequest, settings entity.ApprovalSettings) bool {
	if req == nil || !req.IsPending() {
		return false
	}
	return IsAutoApprovable(req.Quantity, settings)
}
