package models

// WaterProduct is a sellable item. Stock is the contended column: every
// order line decrements it inside the placement transaction.
type WaterProduct struct {
	BaseModel
	Name         string  `json:"name"`
	VolumeLiters float64 `json:"volume_liters"`
	Price        float64 `json:"price"`
	Stock        int     `gorm:"default:0" json:"stock"`
}
