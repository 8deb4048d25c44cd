package entity

import "time"

// Roles válidos para User.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleStaff      = "staff"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusPending  = "pending"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string // superadmin, admin, manager, staff
	Location     string // sucursal asignada (vacío = todas)
	Status       string // active, pending, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal devuelve la identidad que se estampa en las acciones del usuario.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Name: u.Name, Email: u.Email}
}
