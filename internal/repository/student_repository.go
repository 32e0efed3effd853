package repository

import (
	"context"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// StudentRepository handles the student roster.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	List(ctx context.Context, page Page) ([]domain.Student, error)
}

type studentRepository struct {
	db DBTX
}

// NewStudentRepository instantiates the repository.
func NewStudentRepository(db DBTX) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *domain.Student) error {
	const query = `
        INSERT INTO students (id, grade, class_no, number, name)
        VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		student.ID,
		student.Grade,
		student.ClassNo,
		student.Number,
		student.Name,
	)
	return err
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	const query = `SELECT id, grade, class_no, number, name FROM students WHERE id=$1`

	var student domain.Student
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.Grade,
		&student.ClassNo,
		&student.Number,
		&student.Name,
	); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) List(ctx context.Context, page Page) ([]domain.Student, error) {
	query := `
        SELECT id, grade, class_no, number, name
        FROM students ORDER BY grade, class_no, number` + page.limitClause()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Student{}
	for rows.Next() {
		var student domain.Student
		if err := rows.Scan(
			&student.ID,
			&student.Grade,
			&student.ClassNo,
			&student.Number,
			&student.Name,
		); err != nil {
			return nil, err
		}
		result = append(result, student)
	}
	return result, rows.Err()
}
