package routes_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/example/waterline/internal/models"
)

func TestRegisterVerifyLoginFlow(t *testing.T) {
	app, db, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/auth/register", map[string]interface{}{
		"name":     "Sardor",
		"email":    "sardor@example.com",
		"phone":    "+998901234567",
		"password": "secret123",
	}, "")
	if status != http.StatusCreated {
		t.Fatalf("register: want 201, got %d (%v)", status, body)
	}
	userID, _ := body["user_id"].(string)
	if userID == "" {
		t.Fatal("register response missing user_id")
	}

	var customer models.Customer
	if err := db.First(&customer, "id = ?", userID).Error; err != nil {
		t.Fatalf("load customer: %v", err)
	}
	if customer.IsActive {
		t.Fatal("account must be inactive before verification")
	}
	if customer.OTP == nil || len(*customer.OTP) != 6 {
		t.Fatal("expected a stored 6-digit OTP")
	}

	// Login is blocked until the email is verified.
	status, _ = doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"email":    "sardor@example.com",
		"password": "secret123",
	}, "")
	if status != http.StatusForbidden {
		t.Fatalf("login before verification: want 403, got %d", status)
	}

	// Wrong code is rejected without activating.
	status, body = doJSON(t, app, "POST", "/auth/verifyEmail", map[string]interface{}{
		"user_id": userID,
		"otp":     "000000",
	}, "")
	if *customer.OTP == "000000" {
		t.Skip("generated OTP collided with the test's wrong code")
	}
	if status != http.StatusBadRequest {
		t.Fatalf("wrong OTP: want 400, got %d (%v)", status, body)
	}

	status, _ = doJSON(t, app, "POST", "/auth/verifyEmail", map[string]interface{}{
		"user_id": userID,
		"otp":     *customer.OTP,
	}, "")
	if status != http.StatusOK {
		t.Fatalf("verify: want 200, got %d", status)
	}

	// Verification is one-shot.
	status, body = doJSON(t, app, "POST", "/auth/verifyEmail", map[string]interface{}{
		"user_id": userID,
		"otp":     *customer.OTP,
	}, "")
	if status != http.StatusBadRequest || body["message"] != "user already verified" {
		t.Fatalf("second verify: want 400 already verified, got %d (%v)", status, body)
	}

	status, body = doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"email":    "sardor@example.com",
		"password": "secret123",
	}, "")
	if status != http.StatusOK {
		t.Fatalf("login: want 200, got %d (%v)", status, body)
	}
	if tok, _ := body["access_token"].(string); tok == "" {
		t.Fatal("login response missing access_token")
	}
	if tok, _ := body["refresh_token"].(string); tok == "" {
		t.Fatal("login response missing refresh_token")
	}
}

func TestVerifyEmailExpiredOTP(t *testing.T) {
	app, db, _ := newTestApp(t)

	customer := createCustomer(t, db, "Dilshod", models.RoleCustomer, false)
	otp := "123456"
	expired := time.Now().Add(-time.Minute)
	if err := db.Model(&customer).Updates(map[string]interface{}{
		"otp":            otp,
		"otp_expires_at": expired,
	}).Error; err != nil {
		t.Fatal(err)
	}

	status, body := doJSON(t, app, "POST", "/auth/verifyEmail", map[string]interface{}{
		"user_id": customer.ID.String(),
		"otp":     otp,
	}, "")
	if status != http.StatusBadRequest || body["message"] != "OTP expired" {
		t.Fatalf("want 400 OTP expired, got %d (%v)", status, body)
	}
}

func TestResendEmailRotatesOTP(t *testing.T) {
	app, db, _ := newTestApp(t)

	customer := createCustomer(t, db, "Aziza", models.RoleCustomer, false)
	otp := "111111"
	expires := time.Now().Add(10 * time.Minute)
	if err := db.Model(&customer).Updates(map[string]interface{}{
		"otp":            otp,
		"otp_expires_at": expires,
	}).Error; err != nil {
		t.Fatal(err)
	}

	status, _ := doJSON(t, app, "POST", "/auth/resendEmail", map[string]interface{}{
		"user_id": customer.ID.String(),
	}, "")
	if status != http.StatusOK {
		t.Fatalf("resend: want 200, got %d", status)
	}

	var reloaded models.Customer
	if err := db.First(&reloaded, "id = ?", customer.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.OTP == nil || len(*reloaded.OTP) != 6 {
		t.Fatal("expected a fresh OTP")
	}
}

// A second login overwrites the stored refresh token, revoking the first
// session's token even though it is still cryptographically valid.
func TestRefreshTokenRotation(t *testing.T) {
	app, db, _ := newTestApp(t)

	customer := createCustomer(t, db, "Bekzod", models.RoleCustomer, true)

	login := func() string {
		status, body := doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
			"email":    customer.Email,
			"password": testPassword,
		}, "")
		if status != http.StatusOK {
			t.Fatalf("login: want 200, got %d (%v)", status, body)
		}
		token, _ := body["refresh_token"].(string)
		if token == "" {
			t.Fatal("missing refresh_token")
		}
		return token
	}

	firstRefresh := login()
	time.Sleep(1100 * time.Millisecond) // distinct iat so the tokens differ
	secondRefresh := login()

	if firstRefresh == secondRefresh {
		t.Fatal("expected distinct refresh tokens across logins")
	}

	status, _ := doJSON(t, app, "POST", "/auth/refresh", map[string]interface{}{
		"refresh_token": firstRefresh,
	}, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("revoked refresh token: want 401, got %d", status)
	}

	status, body := doJSON(t, app, "POST", "/auth/refresh", map[string]interface{}{
		"refresh_token": secondRefresh,
	}, "")
	if status != http.StatusOK {
		t.Fatalf("current refresh token: want 200, got %d (%v)", status, body)
	}
	if tok, _ := body["access_token"].(string); tok == "" {
		t.Fatal("refresh response missing access_token")
	}
}

func TestLogout(t *testing.T) {
	app, db, _ := newTestApp(t)

	customer := createCustomer(t, db, "Nodira", models.RoleCustomer, true)

	status, body := doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"email":    customer.Email,
		"password": testPassword,
	}, "")
	if status != http.StatusOK {
		t.Fatalf("login: want 200, got %d", status)
	}
	refreshToken, _ := body["refresh_token"].(string)

	// Missing token is treated as already logged out.
	status, _ = doJSON(t, app, "POST", "/auth/logout", map[string]interface{}{}, "")
	if status != http.StatusNoContent {
		t.Fatalf("empty logout: want 204, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/auth/logout", map[string]interface{}{
		"refresh_token": refreshToken,
	}, "")
	if status != http.StatusNoContent {
		t.Fatalf("logout: want 204, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/auth/refresh", map[string]interface{}{
		"refresh_token": refreshToken,
	}, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: want 401, got %d", status)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	app, db, _ := newTestApp(t)

	customer := createCustomer(t, db, "Karim", models.RoleCustomer, true)

	status, _ := doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"email":    "unknown@example.com",
		"password": testPassword,
	}, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("unknown email: want 401, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"email":    customer.Email,
		"password": "wrong-password",
	}, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("wrong password: want 401, got %d", status)
	}
}

func TestRegisterDuplicatePhoneOrEmail(t *testing.T) {
	app, db, _ := newTestApp(t)

	existing := createCustomer(t, db, "Umid", models.RoleCustomer, true)

	status, body := doJSON(t, app, "POST", "/auth/register", map[string]interface{}{
		"name":     "Umid Clone",
		"email":    existing.Email,
		"phone":    "+998909999999",
		"password": "secret123",
	}, "")
	if status != http.StatusBadRequest {
		t.Fatalf("duplicate email: want 400, got %d (%v)", status, body)
	}
}

func TestProtectRejectsBadTokens(t *testing.T) {
	app, db, cfg := newTestApp(t)

	status, _ := doJSON(t, app, "GET", "/orders", nil, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("missing header: want 401, got %d", status)
	}

	status, _ = doJSON(t, app, "GET", "/orders", nil, "not-a-real-token")
	if status != http.StatusUnauthorized {
		t.Fatalf("garbage token: want 401, got %d", status)
	}

	// A valid token for a deleted account no longer authenticates.
	ghost := createCustomer(t, db, "Ghost", models.RoleCustomer, true)
	token := bearerFor(t, cfg, ghost)
	if err := db.Delete(&models.Customer{}, "id = ?", ghost.ID).Error; err != nil {
		t.Fatal(err)
	}
	status, _ = doJSON(t, app, "GET", "/orders", nil, token)
	if status != http.StatusUnauthorized {
		t.Fatalf("deleted account: want 401, got %d", status)
	}

	// An unverified account is authenticated but forbidden.
	inactive := createCustomer(t, db, "Pending", models.RoleCustomer, false)
	status, _ = doJSON(t, app, "GET", "/orders", nil, bearerFor(t, cfg, inactive))
	if status != http.StatusForbidden {
		t.Fatalf("inactive account: want 403, got %d", status)
	}
}
