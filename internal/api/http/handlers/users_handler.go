package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nightstudy-service/internal/api/dto"
	"github.com/spec-kit/nightstudy-service/internal/auth"
	"github.com/spec-kit/nightstudy-service/internal/config"
	"github.com/spec-kit/nightstudy-service/internal/domain"
	"github.com/spec-kit/nightstudy-service/internal/service"
	apperrors "github.com/spec-kit/nightstudy-service/pkg/util"
)

// UsersHandler exposes account and session endpoints.
type UsersHandler struct {
	auth *service.AuthService
	cfg  config.AuthConfig
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, cfg config.AuthConfig) *UsersHandler {
	return &UsersHandler{auth: authService, cfg: cfg}
}

// Register handles POST /api/user/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		StudentID: req.StudentID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewUserResponse(user))
}

// Login handles POST /api/user/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, pair, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	h.setCookie(c, auth.AccessCookie, pair.AccessToken, h.cfg.AccessTokenTTL)
	h.setCookie(c, auth.RefreshCookie, pair.RefreshToken, h.cfg.RefreshTokenTTL)
	return respond(c, http.StatusOK, dto.LoginResponse{User: dto.NewUserResponse(user), Tokens: pair})
}

// Refresh handles POST /api/user/refresh.
func (h *UsersHandler) Refresh(c *fiber.Ctx) error {
	refresh := auth.ExtractToken(c, h.cfg.TokenSource, auth.RefreshCookie)

	access, err := h.auth.Refresh(c.UserContext(), refresh)
	if err != nil {
		return err
	}

	h.setCookie(c, auth.AccessCookie, access, h.cfg.AccessTokenTTL)
	c.Set(fiber.HeaderAuthorization, "Bearer "+access)
	return respond(c, http.StatusOK, dto.RefreshResponse{AccessToken: access})
}

// Logout handles POST /api/user/logout. Whatever the client presents is
// revoked; tokens named in the body win over cookies and headers.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	pair := domain.TokenPair{AccessToken: req.AccessToken, RefreshToken: req.RefreshToken}
	if pair.AccessToken == "" {
		pair.AccessToken = auth.ExtractToken(c, h.cfg.TokenSource, auth.AccessCookie)
	}
	if pair.RefreshToken == "" && h.cfg.TokenSource == config.TokenSourceCookie {
		pair.RefreshToken = c.Cookies(auth.RefreshCookie)
	}

	if err := h.auth.Logout(c.UserContext(), pair); err != nil {
		return err
	}

	h.clearCookie(c, auth.AccessCookie)
	h.clearCookie(c, auth.RefreshCookie)
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /api/user/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity, err := principalIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Me(c.UserContext(), identity.SubjectID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewUserResponse(user))
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext(), pageFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewUserList(users))
}

// UpdateRole handles PATCH /api/users/:id/role.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	actor, err := principalIdentity(c)
	if err != nil {
		return err
	}
	var req dto.RoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	role, err := req.ParsedRole()
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	user, err := h.auth.ChangeRole(c.UserContext(), actor, c.Params("id"), role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewUserResponse(user))
}

func (h *UsersHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *UsersHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
