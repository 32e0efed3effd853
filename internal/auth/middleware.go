package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nightstudy-service/internal/config"
	"github.com/spec-kit/nightstudy-service/internal/domain"
	apperrors "github.com/spec-kit/nightstudy-service/pkg/util"
)

const principalKey = "auth_principal"

// Cookie names shared with the login/refresh handlers.
const (
	AccessCookie  = "token"
	RefreshCookie = "refresh-token"
)

const (
	msgNotAllowed     = "access is not allowed"
	msgInvalidSession = "session expired or invalid, please log in again"
)

// Principal represents the authenticated caller.
type Principal struct {
	SubjectID string
	Role      domain.Role
}

// AuthMiddleware validates session tokens. It does not look at roles.
type AuthMiddleware struct {
	sessions *SessionManager
	source   config.TokenSource
}

// NewAuthMiddleware constructs middleware reading tokens from source.
func NewAuthMiddleware(sessions *SessionManager, source config.TokenSource) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, source: source}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := ExtractToken(c, m.source, AccessCookie)
	if token == "" {
		return apperrors.NewUnauthorized(msgNotAllowed)
	}

	claims, err := m.sessions.VerifyAccess(c.UserContext(), token)
	if err != nil {
		return apperrors.NewUnauthorized(msgInvalidSession)
	}

	identity := claims.Identity()
	c.Locals(principalKey, &Principal{SubjectID: identity.SubjectID, Role: identity.Role})
	return c.Next()
}

// ExtractToken reads a bearer token from the named cookie or from the
// Authorization header, depending on source. The two are never mixed.
func ExtractToken(c *fiber.Ctx, source config.TokenSource, cookie string) string {
	if source == config.TokenSourceHeader {
		return bearerToken(c.Get(fiber.HeaderAuthorization))
	}
	return strings.TrimSpace(c.Cookies(cookie))
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
