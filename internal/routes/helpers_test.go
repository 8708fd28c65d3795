package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/waterline/internal/config"
	"github.com/example/waterline/internal/database"
	"github.com/example/waterline/internal/logger"
	"github.com/example/waterline/internal/models"
	"github.com/example/waterline/internal/routes"
	"github.com/example/waterline/internal/utils"
)

const testPassword = "secret123"

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:           "test",
		JWTAccessSecret:  "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTTL:        15 * time.Minute,
		RefreshTTL:       168 * time.Hour,
		MailFrom:         "no-reply@waterline.local",
	}
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := testConfig()
	app := routes.NewApp(db, cfg, logger.New("error"))
	return app, db, cfg
}

func createCustomer(t *testing.T, db *gorm.DB, name, role string, active bool) models.Customer {
	t.Helper()

	hash, err := utils.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	customer := models.Customer{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", strings.ToLower(name)),
		Phone:        fmt.Sprintf("+99890%07d", time.Now().UnixNano()%10000000),
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func bearerFor(t *testing.T, cfg *config.Config, customer models.Customer) string {
	t.Helper()
	token, err := utils.SignToken(cfg.JWTAccessSecret, customer.ID, customer.Role, cfg.AccessTTL)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// doJSON performs a request against the app and decodes the JSON body.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			t.Fatalf("%s %s: decode body: %v", method, path, err)
		}
	}

	return resp.StatusCode, decoded
}
