package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// ErrAlreadyRecorded is returned when the student already checked in for the
// period on that day.
var ErrAlreadyRecorded = errors.New("attendance already recorded")

// AttendanceRepository stores check-ins.
type AttendanceRepository interface {
	Record(ctx context.Context, record *domain.AttendanceRecord) error
	Find(ctx context.Context, q domain.AttendanceQuery) ([]domain.AttendanceRecord, error)
}

type attendanceRepository struct {
	db  DBTX
	loc *time.Location
}

// NewAttendanceRepository instantiates the repository. Day boundaries are taken in
// loc (the school's local time).
func NewAttendanceRepository(db DBTX, loc *time.Location) AttendanceRepository {
	if loc == nil {
		loc = time.Local
	}
	return &attendanceRepository{db: db, loc: loc}
}

func (r *attendanceRepository) Record(ctx context.Context, record *domain.AttendanceRecord) error {
	const query = `
        INSERT INTO attendance_records (student_id, attendance_time, period, attended_on)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (student_id, attended_on, period) DO NOTHING
        RETURNING id`

	t := record.AttendanceTime.In(r.loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	err := r.db.QueryRow(ctx, query,
		record.StudentID,
		record.AttendanceTime,
		string(record.Period),
		day,
	).Scan(&record.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyRecorded
	}
	return err
}

func (r *attendanceRepository) Find(ctx context.Context, q domain.AttendanceQuery) ([]domain.AttendanceRecord, error) {
	query := `SELECT id, student_id, attendance_time, period FROM attendance_records`
	args := []any{}
	clauses := []string{}

	if q.StudentID != nil {
		args = append(args, *q.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if from, to, ok := attendanceBounds(q, r.loc); ok {
		args = append(args, from, to)
		clauses = append(clauses, fmt.Sprintf("attendance_time >= $%d AND attendance_time < $%d", len(args)-1, len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY attendance_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AttendanceRecord{}
	for rows.Next() {
		var (
			rec    domain.AttendanceRecord
			period string
		)
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.AttendanceTime, &period); err != nil {
			return nil, err
		}
		rec.Period = domain.Period(period)
		result = append(result, rec)
	}
	return result, rows.Err()
}

// attendanceBounds turns the date filters into a half-open [from, to) interval.
// A single date covers that whole day; a range covers From's day through To's day.
func attendanceBounds(q domain.AttendanceQuery, loc *time.Location) (time.Time, time.Time, bool) {
	switch {
	case q.Date != nil:
		start := startOfDay(*q.Date, loc)
		return start, start.AddDate(0, 0, 1), true
	case q.From != nil && q.To != nil:
		return startOfDay(*q.From, loc), startOfDay(*q.To, loc).AddDate(0, 0, 1), true
	}
	return time.Time{}, time.Time{}, false
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
