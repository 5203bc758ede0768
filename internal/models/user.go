package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
)

// UserRole is the fixed three-level role set
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleHotel      UserRole = "HOTEL"
)

func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case RoleSuperAdmin, RoleAdmin, RoleHotel:
		return UserRole(s), nil
	default:
		return "", apperrors.Validation("role", "invalid role: "+s)
	}
}

// User is a back-office principal. Permissions, when non-empty, is the
// explicit per-user override of the role default permission set.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         UserRole  `json:"role"`
	Permissions  []string  `json:"permissions,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserHotelGrant links a user to a hotel independently of role. Without the
// grant, role permissions alone never give cross-tenant access.
type UserHotelGrant struct {
	UserID    uuid.UUID `json:"user_id"`
	HotelID   int64     `json:"hotel_id"`
	CreatedAt time.Time `json:"created_at"`
}
