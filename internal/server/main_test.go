package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"talents/internal/config"
	"talents/internal/database"
	"talents/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                    testSecret,
		Env:                          "test",
		AllowedOrigins:               "http://localhost:5173",
		ContactRequestRetentionHours: 720,
		MessageMaxLength:             5000,
		NotificationTimeoutSeconds:   5,
		AuditEnabled:                 true,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	srv, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.dispatcher.Wait()
		srv.auditStore.Wait()
	})

	return &testEnv{srv: srv, app: srv.NewApp(), db: db}
}

func (e *testEnv) user(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) subscribe(t *testing.T, userID uint, status models.SubscriptionStatus) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.Subscription{UserID: userID, Status: status}).Error)
}

func tokenFor(t *testing.T, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// call sends a request as userID (zero for anonymous) and returns the status
// and raw body.
func (e *testEnv) call(t *testing.T, method, path string, userID uint, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID != 0 {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tokenFor(t, userID))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}
