package models

import "time"

// Role names seeded by the server.
const (
	RoleAdministrator = "administrator"
	RoleVendor        = "vendor"
	RoleDireksi       = "direksi"
)

// Role represents user roles with numeric primary key
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}

// DefaultRoles is the master list seeded on startup and by cmd/create_user.
func DefaultRoles() []Role {
	return []Role{
		{Name: RoleAdministrator, Description: "full access"},
		{Name: RoleVendor, Description: "rekanan / vendor"},
		{Name: RoleDireksi, Description: "direksi pekerjaan (approver)"},
	}
}
