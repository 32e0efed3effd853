package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// ScheduleRepository stores one weekly schedule per student.
type ScheduleRepository interface {
	Upsert(ctx context.Context, schedule *domain.WeekSchedule) error
	GetByStudentID(ctx context.Context, studentID string) (*domain.WeekSchedule, error)
	List(ctx context.Context, page Page) ([]domain.WeekSchedule, error)
}

type scheduleRepository struct {
	db DBTX
}

// NewScheduleRepository instantiates the repository.
func NewScheduleRepository(db DBTX) ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `student_id, class_no, pos_x, pos_y,
        mon_a1, mon_n1, mon_n2, tue_a1, tue_n1, tue_n2,
        thu_a1, thu_n1, thu_n2, fri_a1, fri_n1, fri_n2`

func (r *scheduleRepository) Upsert(ctx context.Context, s *domain.WeekSchedule) error {
	const query = `
        INSERT INTO schedules (` + scheduleColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        ON CONFLICT (student_id) DO UPDATE SET
            class_no=EXCLUDED.class_no, pos_x=EXCLUDED.pos_x, pos_y=EXCLUDED.pos_y,
            mon_a1=EXCLUDED.mon_a1, mon_n1=EXCLUDED.mon_n1, mon_n2=EXCLUDED.mon_n2,
            tue_a1=EXCLUDED.tue_a1, tue_n1=EXCLUDED.tue_n1, tue_n2=EXCLUDED.tue_n2,
            thu_a1=EXCLUDED.thu_a1, thu_n1=EXCLUDED.thu_n1, thu_n2=EXCLUDED.thu_n2,
            fri_a1=EXCLUDED.fri_a1, fri_n1=EXCLUDED.fri_n1, fri_n2=EXCLUDED.fri_n2,
            updated_at=NOW()`

	_, err := r.db.Exec(ctx, query,
		s.StudentID, s.ClassNo, s.PosX, s.PosY,
		s.Mon.A1, s.Mon.N1, s.Mon.N2,
		s.Tue.A1, s.Tue.N1, s.Tue.N2,
		s.Thu.A1, s.Thu.N1, s.Thu.N2,
		s.Fri.A1, s.Fri.N1, s.Fri.N2,
	)
	return err
}

func (r *scheduleRepository) GetByStudentID(ctx context.Context, studentID string) (*domain.WeekSchedule, error) {
	const query = `SELECT ` + scheduleColumns + ` FROM schedules WHERE student_id=$1`
	return scanSchedule(r.db.QueryRow(ctx, query, studentID))
}

func (r *scheduleRepository) List(ctx context.Context, page Page) ([]domain.WeekSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules ORDER BY class_no, pos_y, pos_x` + page.limitClause()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.WeekSchedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func scanSchedule(row pgx.Row) (*domain.WeekSchedule, error) {
	var s domain.WeekSchedule
	if err := row.Scan(
		&s.StudentID, &s.ClassNo, &s.PosX, &s.PosY,
		&s.Mon.A1, &s.Mon.N1, &s.Mon.N2,
		&s.Tue.A1, &s.Tue.N1, &s.Tue.N2,
		&s.Thu.A1, &s.Thu.N1, &s.Thu.N2,
		&s.Fri.A1, &s.Fri.N1, &s.Fri.N2,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
