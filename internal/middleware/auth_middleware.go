package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kilimo-tech/farmgate-pos/internal/service"
)

// AuthMiddleware creates a JWT authentication middleware. The verified
// claims land in Locals so handlers can namespace per-user work.
func AuthMiddleware(authService *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from cookie
		token := c.Cookies("auth_token")

		// If no cookie, try Authorization header
		if token == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					token = parts[1]
				}
			}
		}

		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized: no token provided",
			})
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized: invalid token",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("role", strings.ToUpper(strings.TrimSpace(claims.Role)))
		c.Locals("token", token)

		return c.Next()
	}
}

// RequireRoles enforces role-based access control after AuthMiddleware.
func RequireRoles(allowedRoles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		normalizedRole := strings.ToUpper(strings.TrimSpace(role))
		if normalizedRole != "" {
			allowed[normalizedRole] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden: role not found in token",
			})
		}

		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden: insufficient permissions",
			})
		}

		return c.Next()
	}
}
