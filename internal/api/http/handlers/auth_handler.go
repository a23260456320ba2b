package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-import/internal/api/dto"
	"github.com/spec-kit/ticket-import/internal/service"
	apperrors "github.com/spec-kit/ticket-import/pkg/util/errorutil"
)

// AuthHandler exposes login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs, ok := req.Ok(); !ok {
		return apperrors.NewValidationError("login and password required", dto.Details(errs))
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Login, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserResponse{
				ID:       user.ID,
				Login:    user.Login,
				RealName: user.RealName,
				Email:    user.Email,
				EntityID: user.EntityID,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
