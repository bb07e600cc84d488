// Package middleware provides authentication, request context, logging,
// rate limiting, tracing and metrics middleware for the HTTP API.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"talents/internal/config"
	"talents/internal/models"
	"talents/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDLocal is the fiber locals key holding the authenticated user id.
const UserIDLocal = "userID"

var cfg *config.Config

var errNoToken = errors.New("no bearer token")

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(c *fiber.Ctx) error {
	userID, err := authenticate(c)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, errNoToken) {
			msg = "Authorization header required"
		}
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
	}
	setUser(c, userID)
	return c.Next()
}

// AuthOptional lets anonymous callers through but still rejects a token that
// is present and invalid.
func AuthOptional(c *fiber.Ctx) error {
	userID, err := authenticate(c)
	if errors.Is(err, errNoToken) {
		return c.Next()
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(err.Error()))
	}
	setUser(c, userID)
	return c.Next()
}

// setUser stores the caller in locals and syncs it to the user context for
// logging and downstream services.
func setUser(c *fiber.Ctx, userID uint) {
	c.Locals(UserIDLocal, userID)
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	ctx = context.WithValue(ctx, observability.UserIDKey, userID)
	c.SetUserContext(ctx)
}

// UserID returns the authenticated user id, or zero for anonymous callers.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(UserIDLocal).(uint); ok {
		return id
	}
	return 0
}

func authenticate(c *fiber.Ctx) (uint, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, errNoToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, errors.New("Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("Invalid or expired token")
	}

	// Subject claim per RFC 7519 carries the user id.
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errors.New("Invalid token structure - missing subject")
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, errors.New("Invalid user ID in token")
	}
	return uint(userID), nil
}
