package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"talents/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(UserIDLocal, uint(9))
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/ctx", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		return c.JSON(fiber.Map{
			"correlation_id": observability.ExtractCorrelationID(ctx),
			"request_id":     observability.ExtractRequestID(ctx),
			"user_id":        observability.ExtractUserID(ctx),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "req-123", body["correlation_id"])
	assert.Equal(t, "req-123", body["request_id"])
	assert.Equal(t, float64(9), body["user_id"])
}

func TestContextMiddleware_GeneratesCorrelationID(t *testing.T) {
	app := fiber.New()
	app.Use(ContextMiddleware())
	app.Get("/ctx", func(c *fiber.Ctx) error {
		return c.SendString(observability.ExtractCorrelationID(c.UserContext()))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ctx", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	id, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Len(t, string(id), 36)
}
