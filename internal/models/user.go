package models

import "gorm.io/gorm"

// Roles an authenticated actor can carry. Status changes on orders are
// restricted to ADMIN; everything role-gated takes the role as an explicit
// argument rather than reading it from request context.
const (
	RoleCustomer   = "CUSTOMER"
	RolePharmacist = "PHARMACIST"
	RoleAdmin      = "ADMIN"
)

// User represents a user of the store.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(16)" validate:"omitempty,oneof=CUSTOMER PHARMACIST ADMIN"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
