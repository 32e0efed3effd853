package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nightstudy-service/internal/domain"
	apperrors "github.com/spec-kit/nightstudy-service/pkg/util"
)

// RequireRole lets the request through only if the principal has one of allowed.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(msgNotAllowed)
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden(msgInvalidSession)
		}
		return c.Next()
	}
}
