package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses form a strictly forward state machine.
const (
	OrderStatusPending    = "pending"
	OrderStatusAccepted   = "accepted"
	OrderStatusDelivering = "delivering"
	OrderStatusReceived   = "received"
)

var orderStatusRank = map[string]int{
	OrderStatusPending:    0,
	OrderStatusAccepted:   1,
	OrderStatusDelivering: 2,
	OrderStatusReceived:   3,
}

// ValidStatusTransition reports whether to is the immediate successor of
// from. Backward and skip transitions are rejected.
func ValidStatusTransition(from, to string) bool {
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// Order is owned by the customer who placed it. Line items and stock
// decrements are written atomically with the order itself.
type Order struct {
	BaseModel
	CustomerID      uuid.UUID   `gorm:"type:uuid;index" json:"customer_id"`
	DeliveryStaffID *uuid.UUID  `gorm:"type:uuid" json:"delivery_staff_id"`
	OrderDate       time.Time   `json:"order_date"`
	Status          string      `gorm:"default:pending" json:"status"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OwnerID reports the owning customer for ownership checks.
func (o *Order) OwnerID() *uuid.UUID {
	return &o.CustomerID
}

// OrderItem links an order to a product line. TotalPrice is computed at
// creation and never recomputed.
type OrderItem struct {
	BaseModel
	OrderID    uuid.UUID     `gorm:"type:uuid;index" json:"order_id"`
	ProductID  uuid.UUID     `gorm:"type:uuid;index" json:"product_id"`
	Product    *WaterProduct `json:"product,omitempty"`
	Quantity   int           `json:"quantity"`
	TotalPrice float64       `json:"total_price"`
}
