package routes

import (
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/waterline/internal/apperr"
	"github.com/example/waterline/internal/config"
	"github.com/example/waterline/internal/handlers"
	"github.com/example/waterline/internal/middleware"
	"github.com/example/waterline/internal/models"
	"github.com/example/waterline/internal/services"
	"github.com/example/waterline/internal/validation"
)

// NewApp builds the fiber application: centralized error handling,
// recovery and request logging, all routes, and the 404 fallback.
func NewApp(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Waterline Backend",
		ErrorHandler: errorHandler(cfg),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	Register(app, db, cfg, log)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Route not found",
			"method":  c.Method(),
			"path":    c.Path(),
		})
	})

	return app
}

// errorHandler is the single responder every failure funnels through.
func errorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			payload := fiber.Map{
				"message": appErr.Message,
				"name":    appErr.Name,
			}
			if len(appErr.Errors) > 0 {
				payload["errors"] = appErr.Errors
			}
			return c.Status(appErr.Status).JSON(payload)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"message": fiberErr.Message,
				"name":    "Error",
			})
		}

		payload := fiber.Map{
			"message": err.Error(),
			"name":    "InternalError",
		}
		if !cfg.Production() {
			payload["stack"] = string(debug.Stack())
		}
		return c.Status(fiber.StatusInternalServerError).JSON(payload)
	}
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, log *logrus.Logger) {
	emailService := services.NewEmailService(cfg, log)
	orderService := services.NewOrderService(db, log)

	authHandler := handlers.NewAuthHandler(db, cfg, emailService)
	customerHandler := handlers.NewCustomerHandler(db)
	orderHandler := handlers.NewOrderHandler(db, orderService)

	customers := handlers.NewResource(db, handlers.ResourceConfig[models.Customer]{
		Name: "customer",
		References: []handlers.Reference{
			{Model: &models.Order{}, Column: "customer_id", Name: "orders"},
			{Model: &models.Address{}, Column: "customer_id", Name: "addresses"},
		},
	})

	districts := handlers.NewResource(db, handlers.ResourceConfig[models.District]{
		Name: "district",
		References: []handlers.Reference{
			{Model: &models.Address{}, Column: "district_id", Name: "addresses"},
			{Model: &models.DeliveryStaff{}, Column: "district_id", Name: "delivery staff"},
		},
	})

	addresses := handlers.NewResource(db, handlers.ResourceConfig[models.Address]{
		Name:        "address",
		OwnerColumn: "customer_id",
		OwnedGet:    true,
		OwnedUpdate: true,
		Preloads:    []string{"District"},
		BeforeCreate: func(c *fiber.Ctx, address *models.Address) error {
			// Customers always own the addresses they create.
			if identity, ok := middleware.CurrentIdentity(c); ok && identity.Role == models.RoleCustomer {
				id := identity.ID
				address.CustomerID = &id
			}
			return nil
		},
	})

	deliveryStaff := handlers.NewResource(db, handlers.ResourceConfig[models.DeliveryStaff]{
		Name:     "delivery staff",
		Preloads: []string{"District"},
	})

	waterProducts := handlers.NewResource(db, handlers.ResourceConfig[models.WaterProduct]{
		Name: "water product",
		References: []handlers.Reference{
			{Model: &models.OrderItem{}, Column: "product_id", Name: "order items"},
		},
	})

	orders := handlers.NewResource(db, handlers.ResourceConfig[models.Order]{
		Name:        "order",
		OwnerColumn: "customer_id",
		OwnedGet:    true,
		Preloads:    []string{"Items"},
		References: []handlers.Reference{
			{Model: &models.OrderItem{}, Column: "order_id", Name: "order items"},
			{Model: &models.Payment{}, Column: "order_id", Name: "payments"},
		},
	})

	orderItems := handlers.NewResource(db, handlers.ResourceConfig[models.OrderItem]{
		Name: "order item",
	})

	payments := handlers.NewResource(db, handlers.ResourceConfig[models.Payment]{
		Name: "payment",
		BeforeCreate: func(c *fiber.Ctx, payment *models.Payment) error {
			if payment.PaymentDate.IsZero() {
				payment.PaymentDate = time.Now()
			}
			return nil
		},
	})

	protect := middleware.Protect(db, cfg)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	// Auth
	auth := app.Group("/auth")
	auth.Post("/register", validation.Body(validation.RegisterSchema), authHandler.Register)
	auth.Post("/verifyEmail", validation.Body(validation.VerifyEmailSchema), authHandler.VerifyEmail)
	auth.Post("/resendEmail", validation.Body(validation.ResendEmailSchema), authHandler.ResendEmail)
	auth.Post("/login", validation.Body(validation.LoginSchema), authHandler.Login)
	auth.Post("/refresh", validation.Body(validation.RefreshSchema), authHandler.Refresh)
	auth.Post("/logout", validation.Body(validation.LogoutSchema), authHandler.Logout)

	// Customers
	customersGroup := app.Group("/customers")
	customersGroup.Get("/", protect, adminOnly, customers.List)
	customersGroup.Post("/", validation.Body(validation.CustomerSchema), customerHandler.Create)
	customersGroup.Get("/:id", protect, middleware.RequireSelf(), customers.Get)
	customersGroup.Patch("/:id", validation.Partial(validation.CustomerSchema), protect, middleware.RequireSelf(), customerHandler.Update)
	customersGroup.Delete("/:id", protect, adminOnly, customers.Delete)

	// Districts
	districtsGroup := app.Group("/districts")
	districtsGroup.Get("/", districts.List)
	districtsGroup.Post("/", validation.Body(validation.DistrictSchema), protect, adminOnly, districts.Create)
	districtsGroup.Get("/:id", districts.Get)
	districtsGroup.Patch("/:id", validation.Partial(validation.DistrictSchema), protect, adminOnly, districts.Update)
	districtsGroup.Delete("/:id", protect, adminOnly, districts.Delete)

	// Addresses
	addressGroup := app.Group("/address")
	addressGroup.Get("/", protect, addresses.List)
	addressGroup.Post("/", validation.Body(validation.AddressSchema), protect,
		middleware.RequireRoles(models.RoleAdmin, models.RoleCustomer), addresses.Create)
	addressGroup.Get("/:id", protect, addresses.Get)
	addressGroup.Patch("/:id", validation.Partial(validation.AddressSchema), protect,
		middleware.RequireRoles(models.RoleAdmin, models.RoleCustomer), addresses.Update)
	addressGroup.Delete("/:id", protect,
		middleware.RequireRoles(models.RoleAdmin, models.RoleDeliveryStaff), addresses.Delete)

	// Delivery staff (admin-managed)
	staffGroup := app.Group("/delivery_stuff", protect, adminOnly)
	staffGroup.Get("/", deliveryStaff.List)
	staffGroup.Post("/", validation.Body(validation.DeliveryStaffSchema), deliveryStaff.Create)
	staffGroup.Get("/:id", deliveryStaff.Get)
	staffGroup.Patch("/:id", validation.Partial(validation.DeliveryStaffSchema), deliveryStaff.Update)
	staffGroup.Delete("/:id", deliveryStaff.Delete)

	// Water products
	productsGroup := app.Group("/water_products")
	productsGroup.Get("/", waterProducts.List)
	productsGroup.Post("/", validation.Body(validation.WaterProductSchema), protect, adminOnly, waterProducts.Create)
	productsGroup.Get("/:id", waterProducts.Get)
	productsGroup.Patch("/:id", validation.Partial(validation.WaterProductSchema), protect, adminOnly, waterProducts.Update)
	productsGroup.Delete("/:id", protect, adminOnly, waterProducts.Delete)

	// Orders
	ordersGroup := app.Group("/orders")
	ordersGroup.Get("/", protect, orders.List)
	ordersGroup.Post("/", validation.Body(validation.OrderSchema), protect, orderHandler.Create)
	ordersGroup.Get("/:id", protect, orders.Get)
	ordersGroup.Patch("/:id", validation.Partial(validation.OrderSchema), protect,
		middleware.RequireRoles(models.RoleAdmin, models.RoleDeliveryStaff), orderHandler.Update)
	ordersGroup.Delete("/:id", protect, adminOnly, orders.Delete)

	// Order items
	itemsGroup := app.Group("/order_items")
	itemsGroup.Get("/", protect, orderItems.List)
	itemsGroup.Post("/", validation.Body(validation.OrderItemSchema), protect, orderItems.Create)
	itemsGroup.Get("/:id", protect, orderItems.Get)
	itemsGroup.Patch("/:id", validation.Partial(validation.OrderItemSchema), protect, adminOnly, orderItems.Update)
	itemsGroup.Delete("/:id", protect, adminOnly, orderItems.Delete)

	// Payments
	paymentsGroup := app.Group("/payments")
	paymentsGroup.Get("/", protect, payments.List)
	paymentsGroup.Post("/", validation.Body(validation.PaymentSchema), protect, payments.Create)
	paymentsGroup.Get("/:id", protect, payments.Get)
	paymentsGroup.Patch("/:id", validation.Partial(validation.PaymentSchema), protect,
		middleware.RequireRoles(models.RoleAdmin, models.RoleCustomer), payments.Update)
	paymentsGroup.Delete("/:id", protect,
		middleware.RequireRoles(models.RoleAdmin, models.RoleCustomer), payments.Delete)
}
