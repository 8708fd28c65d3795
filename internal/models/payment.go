package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment methods.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Payment records money against an order.
type Payment struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	PaymentDate time.Time `json:"payment_date"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
}
