package dto

import "time"

// ApprovalSettingsResponse configuración de aprobación vigente.
type ApprovalSettingsResponse struct {
	RequireApproval  bool      `json:"require_approval"`
	AutoApproveBelow int       `json:"auto_approve_below"`
	AllowedLocations []string  `json:"allowed_locations"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
	UpdatedBy        string    `json:"updated_by,omitempty"`
}

// UpdateApprovalSettingsRequest body para PUT /api/settings/approval (campos nil no cambian).
type UpdateApprovalSettingsRequest struct {
	RequireApproval  *bool    `json:"require_approval"`
	AutoApproveBelow *int     `json:"auto_approve_below" validate:"omitempty,min=0"`
	AllowedLocations []string `json:"allowed_locations"`
}
