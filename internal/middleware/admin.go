package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/example/daps/internal/config"
)

// IsAdminCredential is the admin capability check: a shared-secret
// bearer compare today, isolated here so a stronger scheme can replace
// it without touching any caller.
func IsAdminCredential(secret, credential string) bool {
	if secret == "" || credential == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(credential)) == 1
}

// AdminMiddleware guards admin-only routes with the shared admin token.
func AdminMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok || !IsAdminCredential(cfg.AdminToken, token) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid admin token")
		}
		return c.Next()
	}
}
