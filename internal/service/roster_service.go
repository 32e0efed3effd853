package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/nightstudy-service/internal/domain"
	"github.com/spec-kit/nightstudy-service/internal/events"
	"github.com/spec-kit/nightstudy-service/internal/repository"
	apperrors "github.com/spec-kit/nightstudy-service/pkg/util"
)

// Limits of the students table columns.
const (
	maxStudentNameLength = 16
	maxRosterNumber      = math.MaxInt16
)

// RosterService manages students and their weekly schedules.
type RosterService struct {
	students  repository.StudentRepository
	schedules repository.ScheduleRepository
	events    publisher
}

// RosterDependencies bundles repositories for the roster service.
type RosterDependencies struct {
	StudentRepo  repository.StudentRepository
	ScheduleRepo repository.ScheduleRepository
	Dispatcher   events.Dispatcher
}

// NewRosterService constructs the service.
func NewRosterService(deps RosterDependencies) *RosterService {
	return &RosterService{
		students:  deps.StudentRepo,
		schedules: deps.ScheduleRepo,
		events:    newPublisher(deps.Dispatcher),
	}
}

// CreateStudent adds a roster entry.
func (s *RosterService) CreateStudent(ctx context.Context, student domain.Student) (*domain.Student, error) {
	student.ID = strings.TrimSpace(student.ID)
	student.Name = strings.TrimSpace(student.Name)

	if !domain.ValidStudentID(student.ID) {
		return nil, apperrors.NewValidationError("invalid student id", map[string]any{"id": student.ID})
	}
	if student.Name == "" || student.Grade <= 0 || student.ClassNo <= 0 || student.Number <= 0 {
		return nil, apperrors.NewValidationError("name, grade, classNo and number are required", nil)
	}
	if utf8.RuneCountInString(student.Name) > maxStudentNameLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("name must be at most %d characters", maxStudentNameLength), nil)
	}
	if student.Grade > maxRosterNumber || student.ClassNo > maxRosterNumber || student.Number > maxRosterNumber {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("grade, classNo and number must be at most %d", maxRosterNumber), nil)
	}
	if err := s.students.Create(ctx, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// GetStudent returns one roster entry.
func (s *RosterService) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("student", map[string]any{"id": id})
	}
	return student, err
}

// ListStudents returns one page of the roster.
func (s *RosterService) ListStudents(ctx context.Context, page repository.Page) ([]domain.Student, error) {
	return s.students.List(ctx, page)
}

// SaveSchedule creates or replaces a student's weekly schedule.
func (s *RosterService) SaveSchedule(ctx context.Context, actor domain.Identity, schedule domain.WeekSchedule) (*domain.WeekSchedule, error) {
	if !domain.ValidStudentID(schedule.StudentID) {
		return nil, apperrors.NewValidationError("invalid student id", map[string]any{"studentId": schedule.StudentID})
	}
	if schedule.ClassNo <= 0 || schedule.PosX < 0 || schedule.PosY < 0 {
		return nil, apperrors.NewValidationError("classNo must be positive and seat position non-negative", nil)
	}
	if _, err := s.GetStudent(ctx, schedule.StudentID); err != nil {
		return nil, err
	}
	if err := s.schedules.Upsert(ctx, &schedule); err != nil {
		return nil, err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:      events.EventScheduleUpdated,
		SubjectID: schedule.StudentID,
		Actor:     actorOf(actor),
		Payload:   events.ScheduleUpdatedPayload{ClassNo: schedule.ClassNo},
	})
	return &schedule, nil
}

// GetSchedule returns a student's weekly schedule.
func (s *RosterService) GetSchedule(ctx context.Context, studentID string) (*domain.WeekSchedule, error) {
	schedule, err := s.schedules.GetByStudentID(ctx, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("schedule", map[string]any{"studentId": studentID})
	}
	return schedule, err
}

// ListSchedules returns one page of schedules.
func (s *RosterService) ListSchedules(ctx context.Context, page repository.Page) ([]domain.WeekSchedule, error) {
	return s.schedules.List(ctx, page)
}
