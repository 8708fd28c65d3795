package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/waterline/internal/apperr"
	"github.com/example/waterline/internal/middleware"
	"github.com/example/waterline/internal/models"
	"github.com/example/waterline/internal/services"
)

// OrderHandler owns order placement and the status state machine.
// Listing, lookup and deletion go through the generic handler.
type OrderHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(db *gorm.DB, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, orders: orders}
}

type orderItemRequest struct {
	ProductID  string  `json:"product_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

type createOrderRequest struct {
	CustomerID      string             `json:"customer_id"`
	DeliveryStaffID string             `json:"delivery_staff_id"`
	Status          string             `json:"status"`
	Items           []orderItemRequest `json:"items"`
}

// Create places an order atomically: the order record, its line items and
// all stock decrements commit together or not at all.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return apperr.Unauthorized("unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	// Customers always order for themselves; admins may order on behalf
	// of any customer.
	customerID := identity.ID
	if identity.Role == models.RoleAdmin && req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return apperr.BadRequest("invalid customer_id")
		}
		customerID = id
	}

	input := services.PlaceOrderInput{
		CustomerID: customerID,
		Status:     req.Status,
	}

	if req.DeliveryStaffID != "" {
		id, err := uuid.Parse(req.DeliveryStaffID)
		if err != nil {
			return apperr.BadRequest("invalid delivery_staff_id")
		}
		input.DeliveryStaffID = &id
	}

	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return apperr.BadRequest("invalid product_id")
		}
		input.Lines = append(input.Lines, services.OrderLine{
			ProductID:  productID,
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice,
		})
	}

	order, err := h.orders.PlaceOrder(input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// Update applies a partial merge to an order. Status changes must follow
// the pending -> accepted -> delivering -> received chain one step at a
// time; backward and skip transitions are rejected.
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var order models.Order
	if err := h.db.First(&order, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("order not found")
		}
		return err
	}

	updates, err := parseUpdates(c, []string{"items", "customer_id", "order_date"})
	if err != nil {
		return err
	}

	if status, ok := updates["status"]; ok {
		next, ok := status.(string)
		if !ok || !models.ValidStatusTransition(order.Status, next) {
			return apperr.BadRequest(fmt.Sprintf(
				"invalid status transition from %s to %v", order.Status, status,
			))
		}
	}

	res := h.db.Model(&order).Updates(updates)
	if res.Error != nil {
		return res.Error
	}

	return c.JSON(fiber.Map{"updated": res.RowsAffected})
}
