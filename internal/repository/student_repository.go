package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sujittra/Uni-Exam/internal/model"
)

// ErrStudentNotFound is returned when no roster entry matches.
var ErrStudentNotFound = errors.New("student not found")

// StudentRepository handles roster data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID fetches a roster entry by student id.
func (r *StudentRepository) GetByID(ctx context.Context, studentID string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, section FROM students WHERE id = $1`, studentID,
	).Scan(&s.ID, &s.Name, &s.Section)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return s, nil
}

// Create inserts a roster entry, skipping duplicates.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO students (id, name, section)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		s.ID, s.Name, s.Section,
	)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}
