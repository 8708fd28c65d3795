package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/waterline/internal/apperr"
	"github.com/example/waterline/internal/middleware"
	"github.com/example/waterline/internal/models"
	"github.com/example/waterline/internal/utils"
)

// CustomerHandler owns the customer writes that the generic resource
// handler cannot express: password hashing and role-change control.
// Listing, lookup and deletion go through the generic handler.
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

type createCustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Create directly provisions an active customer account. Unlike
// registration there is no OTP step; the role is always customer.
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req createCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	if req.Password == "" {
		return apperr.Validation([]apperr.FieldError{{Field: "password", Message: "is required"}})
	}

	var existing models.Customer
	err := h.db.Where("phone = ? OR email = ?", req.Phone, req.Email).First(&existing).Error
	if err == nil {
		return apperr.Conflict("phone or email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return apperr.Internal("failed to hash password")
	}

	customer := models.Customer{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}

	if err := h.db.Create(&customer).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(&customer)
}

// Update applies a partial merge to a customer. A supplied password is
// re-hashed; only admins may change roles.
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("customer not found")
		}
		return err
	}

	updates, err := parseUpdates(c, []string{"refresh_token", "otp", "otp_expires_at", "is_active", "password_hash"})
	if err != nil {
		return err
	}

	if _, ok := updates["role"]; ok {
		identity, _ := middleware.CurrentIdentity(c)
		if identity.Role != models.RoleAdmin {
			return apperr.Forbidden("only admins can change roles")
		}
	}

	if password, ok := updates["password"]; ok {
		plaintext, ok := password.(string)
		if !ok {
			return apperr.BadRequest("invalid password")
		}
		hash, err := utils.HashPassword(plaintext)
		if err != nil {
			return apperr.Internal("failed to hash password")
		}
		delete(updates, "password")
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return apperr.BadRequest("no fields to update")
	}

	res := h.db.Model(&customer).Updates(updates)
	if res.Error != nil {
		return res.Error
	}

	return c.JSON(fiber.Map{"updated": res.RowsAffected})
}
