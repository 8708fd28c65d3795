package models

import "time"

// Roles recognized by the authorization middleware.
const (
	RoleAdmin         = "admin"
	RoleDeliveryStaff = "delivery_staff"
	RoleCustomer      = "customer"
)

// Customer represents an account holder. Delivery staff and admins are
// customers with an elevated role.
type Customer struct {
	BaseModel
	Name         string     `json:"name"`
	Phone        string     `gorm:"uniqueIndex" json:"phone"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `gorm:"default:customer" json:"role"`
	RefreshToken *string    `json:"-"`
	IsActive     bool       `json:"is_active"`
	OTP          *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
}
