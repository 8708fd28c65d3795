package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/waterline/internal/apperr"
	"github.com/example/waterline/internal/config"
	"github.com/example/waterline/internal/models"
	"github.com/example/waterline/internal/services"
	"github.com/example/waterline/internal/utils"
)

const otpTTL = 10 * time.Minute

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	email *services.EmailService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, email *services.EmailService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, email: email}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates an inactive account and mails a verification OTP.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	var existing models.Customer
	err := h.db.Where("phone = ? OR email = ?", req.Phone, req.Email).First(&existing).Error
	if err == nil {
		return apperr.BadRequest("phone or email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return apperr.Internal("failed to hash password")
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return apperr.Internal("failed to generate verification code")
	}
	otpExpiresAt := time.Now().Add(otpTTL)

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}

	customer := models.Customer{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     false,
		OTP:          &otp,
		OTPExpiresAt: &otpExpiresAt,
	}

	if err := h.db.Create(&customer).Error; err != nil {
		return err
	}

	go h.email.SendOTP(customer.Email, customer.Name, otp)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "verify your email",
		"user_id": customer.ID,
		"email":   customer.Email,
	})
}

type verifyEmailRequest struct {
	UserID string `json:"user_id"`
	OTP    string `json:"otp"`
}

// VerifyEmail validates the registration OTP and activates the account.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	customer, err := h.findCustomer(req.UserID)
	if err != nil {
		return err
	}

	if customer.IsActive {
		return apperr.BadRequest("user already verified")
	}
	if customer.OTP == nil || *customer.OTP != req.OTP {
		return apperr.BadRequest("invalid OTP")
	}
	if customer.OTPExpiresAt == nil || time.Now().After(*customer.OTPExpiresAt) {
		return apperr.BadRequest("OTP expired")
	}

	if err := h.db.Model(customer).Updates(map[string]interface{}{
		"is_active":      true,
		"otp":            nil,
		"otp_expires_at": nil,
	}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "email verified successfully"})
}

type resendEmailRequest struct {
	UserID string `json:"user_id"`
}

// ResendEmail issues a fresh OTP for an unverified account.
func (h *AuthHandler) ResendEmail(c *fiber.Ctx) error {
	var req resendEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	customer, err := h.findCustomer(req.UserID)
	if err != nil {
		return err
	}

	if customer.IsActive {
		return apperr.BadRequest("user already verified")
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return apperr.Internal("failed to generate verification code")
	}
	otpExpiresAt := time.Now().Add(otpTTL)

	if err := h.db.Model(customer).Updates(map[string]interface{}{
		"otp":            otp,
		"otp_expires_at": otpExpiresAt,
	}).Error; err != nil {
		return err
	}

	go h.email.SendOTP(customer.Email, customer.Name, otp)

	return c.JSON(fiber.Map{"message": "new OTP sent to your email"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a verified account and issues an access/refresh
// token pair. The refresh token is stored on the account: issuing a new
// one implicitly invalidates the previous session.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	var customer models.Customer
	if err := h.db.Where("email = ?", req.Email).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthorized("invalid credentials")
		}
		return err
	}

	if !customer.IsActive {
		return apperr.Forbidden("please verify your email first")
	}

	if !utils.CheckPassword(customer.PasswordHash, req.Password) {
		return apperr.Unauthorized("invalid credentials")
	}

	accessToken, err := utils.SignToken(h.cfg.JWTAccessSecret, customer.ID, customer.Role, h.cfg.AccessTTL)
	if err != nil {
		return apperr.Internal("failed to generate token")
	}

	refreshToken, err := utils.SignToken(h.cfg.JWTRefreshSecret, customer.ID, customer.Role, h.cfg.RefreshTTL)
	if err != nil {
		return apperr.Internal("failed to generate token")
	}

	if err := h.db.Model(&customer).Update("refresh_token", refreshToken).Error; err != nil {
		return err
	}

	// Short-lived cookie mirror of the access token.
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    accessToken,
		Expires:  time.Now().Add(time.Hour),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a valid, still-current refresh token for a new access
// token. A cryptographically valid token that no longer matches the
// stored one is rejected: overwrite and logout both revoke it.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if req.RefreshToken == "" {
		return apperr.BadRequest("refresh_token required")
	}

	customerID, _, err := utils.ParseToken(h.cfg.JWTRefreshSecret, req.RefreshToken)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthorized("invalid refresh token")
		}
		return err
	}

	if customer.RefreshToken == nil || *customer.RefreshToken != req.RefreshToken {
		return apperr.Unauthorized("invalid refresh token")
	}

	accessToken, err := utils.SignToken(h.cfg.JWTAccessSecret, customer.ID, customer.Role, h.cfg.AccessTTL)
	if err != nil {
		return apperr.Internal("failed to generate token")
	}

	return c.JSON(fiber.Map{"access_token": accessToken})
}

// Logout clears the stored refresh token. A missing or unknown token is
// treated as already logged out.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if req.RefreshToken == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	customerID, _, err := utils.ParseToken(h.cfg.JWTRefreshSecret, req.RefreshToken)
	if err != nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if err := h.db.Model(&models.Customer{}).Where("id = ?", customerID).
		Update("refresh_token", nil).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) findCustomer(id string) (*models.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.BadRequest("invalid user id")
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	return &customer, nil
}
