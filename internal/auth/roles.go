package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reparolabs/repairshop-service/internal/domain"
	apperrors "github.com/reparolabs/repairshop-service/pkg/util/errorutil"
)

// RequireRole ensures the principal holds one of the allowed roles. With no
// arguments it only requires authentication. This gate is authoritative: the
// client-side navigation filter is a convenience, not the boundary.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.Role.CanAccess(allowed...) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin is shorthand for the administrator-only gate.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
