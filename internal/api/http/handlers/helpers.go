package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nightstudy-service/internal/auth"
	"github.com/spec-kit/nightstudy-service/internal/domain"
	"github.com/spec-kit/nightstudy-service/internal/repository"
	apperrors "github.com/spec-kit/nightstudy-service/pkg/util"
)

const dateLayout = "2006-01-02"

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

func principalIdentity(c *fiber.Ctx) (domain.Identity, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("access is not allowed")
	}
	return domain.Identity{SubjectID: principal.SubjectID, Role: principal.Role}, nil
}

// pageFrom reads ?page=N. Missing or invalid means the first page.
func pageFrom(c *fiber.Ctx) repository.Page {
	return repository.Page{Number: parseInt(c.Query("page"), 1), Size: repository.DefaultPageSize}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// parseDate reads a YYYY-MM-DD query value in loc.
func parseDate(c *fiber.Ctx, key string, loc *time.Location) (*time.Time, error) {
	val := c.Query(key)
	if val == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, val, loc)
	if err != nil {
		return nil, apperrors.NewValidationError("dates must be YYYY-MM-DD", map[string]any{key: val})
	}
	return &t, nil
}
