package entity

import "time"

// ApprovalSettings configuración de aprobación de traslados (una por empresa).
type ApprovalSettings struct {
	CompanyID        string
	RequireApproval  bool
	AutoApproveBelow int      // umbral inclusivo para auto-aprobación
	AllowedLocations []string // vacío = DefaultLocations
	UpdatedAt        time.Time
	UpdatedBy        string
}

// Locations devuelve el conjunto efectivo de ubicaciones.
func (s ApprovalSettings) Locations() []string {
	if len(s.AllowedLocations) == 0 {
		return DefaultLocations
	}
	return s.AllowedLocations
}
