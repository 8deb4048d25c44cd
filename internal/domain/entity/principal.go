package entity

// Principal identidad del usuario autenticado que firma cada acción (requestedBy, approvedBy, ...).
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsZero indica si no hay identidad.
func (p Principal) IsZero() bool {
	return p.ID == ""
}
