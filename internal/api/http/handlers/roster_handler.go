package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nightstudy-service/internal/api/dto"
	"github.com/spec-kit/nightstudy-service/internal/service"
	apperrors "github.com/spec-kit/nightstudy-service/pkg/util"
)

// RosterHandler exposes students and schedules.
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler constructs handler.
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// CreateStudent handles POST /api/students.
func (h *RosterHandler) CreateStudent(c *fiber.Ctx) error {
	var req dto.StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	student, err := h.roster.CreateStudent(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewStudentResponse(student))
}

// GetStudent handles GET /api/students/:id.
func (h *RosterHandler) GetStudent(c *fiber.Ctx) error {
	student, err := h.roster.GetStudent(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewStudentResponse(student))
}

// ListStudents handles GET /api/students.
func (h *RosterHandler) ListStudents(c *fiber.Ctx) error {
	students, err := h.roster.ListStudents(c.UserContext(), pageFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewStudentList(students))
}

// PutSchedule handles PUT /api/schedules/:studentId.
func (h *RosterHandler) PutSchedule(c *fiber.Ctx) error {
	actor, err := principalIdentity(c)
	if err != nil {
		return err
	}
	var body dto.ScheduleBody
	if err := c.BodyParser(&body); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	schedule, err := h.roster.SaveSchedule(c.UserContext(), actor, body.ToDomain(c.Params("studentId")))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewScheduleResponse(schedule))
}

// GetSchedule handles GET /api/schedules/:studentId.
func (h *RosterHandler) GetSchedule(c *fiber.Ctx) error {
	schedule, err := h.roster.GetSchedule(c.UserContext(), c.Params("studentId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewScheduleResponse(schedule))
}

// ListSchedules handles GET /api/schedules.
func (h *RosterHandler) ListSchedules(c *fiber.Ctx) error {
	schedules, err := h.roster.ListSchedules(c.UserContext(), pageFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewScheduleList(schedules))
}

// MySchedule handles GET /api/me/schedule.
func (h *RosterHandler) MySchedule(c *fiber.Ctx) error {
	identity, err := principalIdentity(c)
	if err != nil {
		return err
	}
	schedule, err := h.roster.GetSchedule(c.UserContext(), identity.SubjectID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewScheduleResponse(schedule))
}
