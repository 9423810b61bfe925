package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kilimo-tech/farmgate-pos/internal/device"
	"github.com/kilimo-tech/farmgate-pos/internal/service"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// viewportWidth reads the client-reported viewport width header; zero when
// absent or malformed.
func viewportWidth(c *fiber.Ctx) int {
	width, err := strconv.Atoi(c.Get("X-Viewport-Width"))
	if err != nil {
		return 0
	}
	return width
}

// Login handles credential sign-in.
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	token, user, err := h.authService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user.DeviceType = string(device.Classify(viewportWidth(c), c.Get("User-Agent")))

	// Set JWT token in HTTP-only cookie
	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Signup creates an account.
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req service.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	user, err := h.authService.Signup(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Logout clears the session cookie and the user's cached report namespace.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID != "" {
		if err := h.authService.Logout(c.Context(), userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{
		"message": "logged out successfully",
	})
}

// Me returns the current session user, merged with the authoritative row
// when the store is reachable.
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	user, err := h.authService.CurrentUser(c.Context(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user.DeviceType = string(device.Classify(viewportWidth(c), c.Get("User-Agent")))
	return c.JSON(user)
}

// ChangePassword updates the caller's own password.
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	userID, _ := c.Locals("user_id").(string)
	if err := h.authService.ChangePassword(c.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "password changed successfully",
	})
}

// RequestReset issues a temporary password for the given email.
// POST /api/auth/request-reset
func (h *AuthHandler) RequestReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email is required",
		})
	}

	tempPassword, err := h.authService.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":            "temporary password issued",
		"temporary_password": tempPassword,
	})
}

// AdminResetPassword resets another user's password via the server-side
// stored procedure. Admin only.
// POST /api/auth/reset-password
func (h *AuthHandler) AdminResetPassword(c *fiber.Ctx) error {
	var req struct {
		UserID      string `json:"user_id"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == "" || req.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id and new_password are required",
		})
	}

	if err := h.authService.AdminResetPassword(c.Context(), req.UserID, req.NewPassword); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "password reset successfully",
	})
}
