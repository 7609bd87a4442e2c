package handler

import (
	"go-remedyflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles admin authentication
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	if req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "Email and password are required")
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, response, "Login successful")
}

// Me returns the admin behind the bearer token.
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, err := uuid.Parse(getUserID(c))
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "Unauthorized")
	}

	user, err := h.authService.Me(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return success(c, fiber.StatusOK, user, "")
}
