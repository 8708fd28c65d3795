package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/waterline/internal/apperr"
	"github.com/example/waterline/internal/models"
)

// OrderLine is one requested product line of a new order.
type OrderLine struct {
	ProductID  uuid.UUID
	Quantity   int
	TotalPrice float64
}

// PlaceOrderInput carries everything needed to place an order.
type PlaceOrderInput struct {
	CustomerID      uuid.UUID
	DeliveryStaffID *uuid.UUID
	Status          string
	Lines           []OrderLine
}

// OrderService owns the order placement transaction.
type OrderService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, log *logrus.Logger) *OrderService {
	return &OrderService{db: db, log: log}
}

// PlaceOrder creates an order, its line items and the matching stock
// decrements atomically. Any failure rolls back every write: there is no
// partial order, no orphan item, no lost stock.
//
// Stock is taken with a guarded decrement (UPDATE ... WHERE stock >= qty)
// and a rows-affected check, so two concurrent orders whose combined
// demand exceeds stock can never both succeed.
func (s *OrderService) PlaceOrder(in PlaceOrderInput) (*models.Order, error) {
	order := models.Order{
		CustomerID:      in.CustomerID,
		DeliveryStaffID: in.DeliveryStaffID,
		Status:          in.Status,
		OrderDate:       time.Now(),
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, line := range in.Lines {
			var product models.WaterProduct
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.BadRequest(fmt.Sprintf("product not found: %s", line.ProductID))
				}
				return err
			}

			res := tx.Model(&models.WaterProduct{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.BadRequest(fmt.Sprintf(
					"insufficient stock for %s: need %d, have %d",
					product.Name, line.Quantity, product.Stock,
				))
			}

			item := models.OrderItem{
				OrderID:    order.ID,
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
				TotalPrice: line.TotalPrice,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}

		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			s.log.WithError(err).Error("order placement failed")
		}
		return nil, err
	}

	return &order, nil
}
