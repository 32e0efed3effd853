package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/nightstudy-service/internal/domain"
	"github.com/spec-kit/nightstudy-service/internal/events"
	"github.com/spec-kit/nightstudy-service/internal/repository"
	apperrors "github.com/spec-kit/nightstudy-service/pkg/util"
)

// AttendanceService records and reports night-study check-ins.
type AttendanceService struct {
	attendance repository.AttendanceRepository
	students   repository.StudentRepository
	events     publisher
	now        func() time.Time
}

// AttendanceDependencies bundles repositories for the attendance service.
type AttendanceDependencies struct {
	AttendanceRepo repository.AttendanceRepository
	StudentRepo    repository.StudentRepository
	Dispatcher     events.Dispatcher
	Now            func() time.Time
}

// NewAttendanceService constructs the service.
func NewAttendanceService(deps AttendanceDependencies) *AttendanceService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		attendance: deps.AttendanceRepo,
		students:   deps.StudentRepo,
		events:     newPublisher(deps.Dispatcher),
		now:        now,
	}
}

// Record checks a student in for period at the current server time.
func (s *AttendanceService) Record(ctx context.Context, actor domain.Identity, studentID string, period domain.Period) (*domain.AttendanceRecord, error) {
	if !domain.ValidStudentID(studentID) {
		return nil, apperrors.NewValidationError("invalid student id", map[string]any{"studentId": studentID})
	}
	if _, err := domain.ParsePeriod(string(period)); err != nil {
		return nil, apperrors.NewValidationError("period must be one of A1, N1, N2", nil)
	}
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("student", map[string]any{"studentId": studentID})
		}
		return nil, err
	}

	record := &domain.AttendanceRecord{
		StudentID:      studentID,
		AttendanceTime: s.now(),
		Period:         period,
	}
	if err := s.attendance.Record(ctx, record); err != nil {
		if errors.Is(err, repository.ErrAlreadyRecorded) {
			return nil, apperrors.NewConflict("attendance already recorded for this period", map[string]any{
				"studentId": studentID,
				"period":    string(period),
			})
		}
		return nil, err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:      events.EventAttendanceRecorded,
		SubjectID: studentID,
		Actor:     actorOf(actor),
		Payload: events.AttendanceRecordedPayload{
			RecordID:       record.ID,
			Period:         record.Period,
			AttendanceTime: record.AttendanceTime,
		},
	})
	return record, nil
}

// Find returns check-ins matching q.
func (s *AttendanceService) Find(ctx context.Context, q domain.AttendanceQuery) ([]domain.AttendanceRecord, error) {
	if q.Date == nil && q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, apperrors.NewValidationError("range end is before its start", nil)
	}
	return s.attendance.Find(ctx, q)
}
