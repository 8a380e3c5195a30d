package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sujittra/Uni-Exam/internal/model"
)

// ErrTeacherNotFound is returned when no teacher account matches.
var ErrTeacherNotFound = errors.New("teacher not found")

// TeacherRepository handles teacher account data access.
type TeacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool}
}

// GetByName fetches a teacher account by display name.
func (r *TeacherRepository) GetByName(ctx context.Context, name string) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, password_hash FROM teachers WHERE name = $1`, name,
	).Scan(&t.ID, &t.Name, &t.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	return t, nil
}

// Create inserts a teacher account.
func (r *TeacherRepository) Create(ctx context.Context, t *model.Teacher) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO teachers (name, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 RETURNING id`,
		t.Name, t.PasswordHash,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert teacher: %w", err)
	}
	return nil
}
