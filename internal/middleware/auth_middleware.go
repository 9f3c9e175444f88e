package middleware

import (
	"log"
	"strings"

	"akun/internal/models"
	"akun/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CurrentUserKey is the Locals key under which AuthRequired stores the
// resolved user.
const CurrentUserKey = "currentUser"

// AuthRequired is a Fiber middleware gating protected routes. The session
// token is read from the "token" cookie, falling back to a Bearer
// Authorization header. A missing, invalid or expired token, or a token
// whose user no longer exists, all fail with 401.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies("token")
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized, token missing",
			})
		}

		user, err := authService.CurrentUser(tokenString)
		if err != nil {
			log.Printf("Auth error: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized, token invalid",
			})
		}

		c.Locals(CurrentUserKey, user)
		return c.Next()
	}
}

// RequireRoles runs after AuthRequired and rejects users whose role is not
// among the given ones with 403, naming the acceptable roles.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !containsRole(roles, user.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access denied. Required role(s): " + strings.Join(roles, ", "),
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user resolved by AuthRequired, or nil outside a
// gated route.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(CurrentUserKey).(*models.User)
	return user
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
