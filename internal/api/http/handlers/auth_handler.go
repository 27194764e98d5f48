package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/reparolabs/repairshop-service/internal/api/dto"
	"github.com/reparolabs/repairshop-service/internal/api/validate"
	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/domain"
	"github.com/reparolabs/repairshop-service/internal/service"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

// AuthHandler exposes login, logout, registration, and the current-user probe.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	result, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		var tooMany *service.TooManyAttemptsError
		if errors.As(err, &tooMany) {
			retry := int(tooMany.RetryAfter.Seconds())
			c.Set("Retry-After", strconv.Itoa(retry))
			return apperrors.NewTooManyRequests("too many attempts", map[string]any{
				"retry_after_seconds": retry,
			})
		}
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"user": dto.NewUserResponse(result.User),
		"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
	}})
}

// Register POST /auth/register. Admin only; new accounts do not get a session.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := h.service.Register(c.Context(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Logout(c.Context(), principal.User.ID, principal.TokenID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.service.CurrentUser(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
