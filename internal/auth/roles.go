package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/rbac"
	apperrors "github.com/spec-kit/roster-service/pkg/util"
)

// RequireCapability guards a route behind one resolved capability. This is
// the same resolver the import mapper consults, so what the HTTP surface
// refuses and what the import path strips can never drift apart.
func RequireCapability(resolver *rbac.Resolver, cap domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("role assertion required")
		}
		if !resolver.HasCapability(principal.Role, cap) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures a role has been asserted at all.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("role assertion required")
		}
		return c.Next()
	}
}
