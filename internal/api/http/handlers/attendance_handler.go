package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nightstudy-service/internal/api/dto"
	"github.com/spec-kit/nightstudy-service/internal/domain"
	"github.com/spec-kit/nightstudy-service/internal/service"
	apperrors "github.com/spec-kit/nightstudy-service/pkg/util"
)

// AttendanceHandler exposes check-in and attendance queries.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	loc        *time.Location
}

// NewAttendanceHandler constructs handler. Query dates are read in loc.
func NewAttendanceHandler(attendance *service.AttendanceService, loc *time.Location) *AttendanceHandler {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceHandler{attendance: attendance, loc: loc}
}

// Record handles POST /api/checkout/attendance.
func (h *AttendanceHandler) Record(c *fiber.Ctx) error {
	actor, err := principalIdentity(c)
	if err != nil {
		return err
	}
	var req dto.AttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	period, err := domain.ParsePeriod(strings.ToUpper(strings.TrimSpace(req.Period)))
	if err != nil {
		return apperrors.NewValidationError("period must be one of A1, N1, N2", nil)
	}

	record, err := h.attendance.Record(c.UserContext(), actor, strings.TrimSpace(req.StudentID), period)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewAttendanceResponse(record))
}

// Query handles GET /api/attendance?studentId=&date=&from=&to=.
func (h *AttendanceHandler) Query(c *fiber.Ctx) error {
	q, err := h.parseQuery(c)
	if err != nil {
		return err
	}
	if id := c.Query("studentId"); id != "" {
		q.StudentID = &id
	}
	return h.find(c, q)
}

// Mine handles GET /api/me/attendance?date=&from=&to=.
func (h *AttendanceHandler) Mine(c *fiber.Ctx) error {
	identity, err := principalIdentity(c)
	if err != nil {
		return err
	}
	q, err := h.parseQuery(c)
	if err != nil {
		return err
	}
	q.StudentID = &identity.SubjectID
	return h.find(c, q)
}

func (h *AttendanceHandler) find(c *fiber.Ctx, q domain.AttendanceQuery) error {
	records, err := h.attendance.Find(c.UserContext(), q)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAttendanceList(records))
}

func (h *AttendanceHandler) parseQuery(c *fiber.Ctx) (domain.AttendanceQuery, error) {
	var (
		q   domain.AttendanceQuery
		err error
	)
	if q.Date, err = parseDate(c, "date", h.loc); err != nil {
		return q, err
	}
	if q.From, err = parseDate(c, "from", h.loc); err != nil {
		return q, err
	}
	if q.To, err = parseDate(c, "to", h.loc); err != nil {
		return q, err
	}
	return q, nil
}
