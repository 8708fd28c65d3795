package validation

import (
	"regexp"

	"github.com/example/waterline/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+\d{9,15}$`)
)

var roleEnum = []string{models.RoleAdmin, models.RoleDeliveryStaff, models.RoleCustomer}

var statusEnum = []string{
	models.OrderStatusPending,
	models.OrderStatusAccepted,
	models.OrderStatusDelivering,
	models.OrderStatusReceived,
}

// Auth schemas.
var (
	RegisterSchema = &Schema{Fields: []Field{
		{Name: "name", Type: TypeString, Required: true, MinLen: 2, MaxLen: 100},
		{Name: "email", Type: TypeString, Required: true, Pattern: emailPattern},
		{Name: "phone", Type: TypeString, Required: true, Pattern: phonePattern},
		{Name: "password", Type: TypeString, Required: true, MinLen: 6},
		{Name: "role", Type: TypeString, Enum: roleEnum},
	}}

	VerifyEmailSchema = &Schema{Fields: []Field{
		{Name: "user_id", Type: TypeUUID, Required: true},
		{Name: "otp", Type: TypeString, Required: true, MinLen: 6, MaxLen: 6},
	}}

	ResendEmailSchema = &Schema{Fields: []Field{
		{Name: "user_id", Type: TypeUUID, Required: true},
	}}

	LoginSchema = &Schema{Fields: []Field{
		{Name: "email", Type: TypeString, Required: true, Pattern: emailPattern},
		{Name: "password", Type: TypeString, Required: true},
	}}

	RefreshSchema = &Schema{Fields: []Field{
		{Name: "refresh_token", Type: TypeString, Required: true},
	}}

	// Logout tolerates a missing token: the caller is then treated as
	// already logged out.
	LogoutSchema = &Schema{Fields: []Field{
		{Name: "refresh_token", Type: TypeString},
	}}
)

// Resource schemas. Creates and partial updates share a schema; updates
// skip required constraints and demand at least one field.
var (
	CustomerSchema = &Schema{MinFields: 1, Fields: []Field{
		{Name: "name", Type: TypeString, MinLen: 2, MaxLen: 100},
		{Name: "email", Type: TypeString, Pattern: emailPattern},
		{Name: "phone", Type: TypeString, MinLen: 9, MaxLen: 20},
		{Name: "password", Type: TypeString, MinLen: 6},
		{Name: "role", Type: TypeString, Enum: roleEnum},
	}}

	DistrictSchema = &Schema{MinFields: 1, Fields: []Field{
		{Name: "name", Type: TypeString, MinLen: 2, MaxLen: 100},
	}}

	AddressSchema = &Schema{MinFields: 1, Fields: []Field{
		{Name: "name", Type: TypeString, MinLen: 2, MaxLen: 100},
		{Name: "customer_id", Type: TypeUUID},
		{Name: "address", Type: TypeString, MaxLen: 500},
		{Name: "location", Type: TypeString},
		{Name: "district_id", Type: TypeUUID},
	}}

	DeliveryStaffSchema = &Schema{MinFields: 1, Fields: []Field{
		{Name: "name", Type: TypeString, MinLen: 2, MaxLen: 100},
		{Name: "phone", Type: TypeString, MinLen: 9, MaxLen: 20},
		{Name: "vehicle_number", Type: TypeInteger, Min: MinValue(0)},
		{Name: "district_id", Type: TypeUUID},
	}}

	WaterProductSchema = &Schema{MinFields: 1, Fields: []Field{
		{Name: "name", Type: TypeString, MinLen: 2, MaxLen: 100},
		{Name: "volume_liters", Type: TypeNumber, Min: MinValue(0)},
		{Name: "price", Type: TypeNumber, Min: MinValue(0)},
		{Name: "stock", Type: TypeInteger, Min: MinValue(0)},
	}}

	OrderSchema = &Schema{MinFields: 1, Fields: []Field{
		{Name: "customer_id", Type: TypeUUID},
		{Name: "delivery_staff_id", Type: TypeUUID},
		{Name: "status", Type: TypeString, Enum: statusEnum},
		{Name: "items", Type: TypeArray, Items: &Schema{Fields: []Field{
			{Name: "product_id", Type: TypeUUID, Required: true},
			{Name: "quantity", Type: TypeInteger, Required: true, Min: MinValue(1)},
			{Name: "total_price", Type: TypeNumber, Required: true, Min: MinValue(0)},
		}}},
	}}

	OrderItemSchema = &Schema{MinFields: 1, Fields: []Field{
		{Name: "order_id", Type: TypeUUID},
		{Name: "product_id", Type: TypeUUID},
		{Name: "quantity", Type: TypeInteger, Min: MinValue(1)},
		{Name: "total_price", Type: TypeNumber, Min: MinValue(0)},
	}}

	PaymentSchema = &Schema{MinFields: 1, Fields: []Field{
		{Name: "order_id", Type: TypeUUID},
		{Name: "payment_date", Type: TypeDate},
		{Name: "amount", Type: TypeNumber, Min: MinValue(0)},
		{Name: "method", Type: TypeString, Enum: []string{models.PaymentPending, models.PaymentPaid}},
	}}
)
