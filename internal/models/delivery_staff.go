package models

import "github.com/google/uuid"

// DeliveryStaff is an admin-managed courier profile.
type DeliveryStaff struct {
	BaseModel
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	VehicleNumber int        `json:"vehicle_number"`
	DistrictID    *uuid.UUID `gorm:"type:uuid" json:"district_id"`
	District      *District  `json:"district,omitempty"`
}
