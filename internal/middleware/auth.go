package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/daps/internal/config"
	"github.com/example/daps/internal/utils"
)

const (
	userIDContextKey    = "currentUserID"
	userEmailContextKey = "currentUserEmail"
)

// AuthMiddleware validates session JWTs and loads the authenticated
// principal into the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or invalid authorization header")
		}

		userID, email, err := utils.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(userIDContextKey, userID)
		c.Locals(userEmailContextKey, email)
		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userIDContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}

// GetCurrentUserEmail extracts the authenticated user's email from context.
func GetCurrentUserEmail(c *fiber.Ctx) string {
	if email, ok := c.Locals(userEmailContextKey).(string); ok {
		return email
	}
	return ""
}

// BearerToken extracts the bearer credential from the Authorization
// header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}
