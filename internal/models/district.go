package models

// District is a delivery zone referenced by addresses and delivery staff.
type District struct {
	BaseModel
	Name string `json:"name"`
}
