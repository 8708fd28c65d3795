package models

import "github.com/google/uuid"

// Address is a delivery destination. Admin-created addresses may be
// unowned; customer-created ones always belong to their creator.
type Address struct {
	BaseModel
	Name       string     `json:"name"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id"`
	Address    string     `json:"address"`
	Location   string     `json:"location"`
	DistrictID *uuid.UUID `gorm:"type:uuid" json:"district_id"`
	District   *District  `json:"district,omitempty"`
}

// OwnerID reports the owning customer for ownership checks.
func (a *Address) OwnerID() *uuid.UUID {
	return a.CustomerID
}
