package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sujittra/Uni-Exam/internal/model"
)

// ErrExamNotFound is returned when no exam exists for the given id.
var ErrExamNotFound = errors.New("exam not found")

// ExamRepository handles exam definition data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID loads one exam definition with its questions in display order.
func (r *ExamRepository) GetByID(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, duration_minutes, sections, active,
		        created_at, updated_at
		 FROM exams WHERE id = $1`, examID,
	).Scan(&exam.ID, &exam.Title, &exam.Description, &exam.DurationMinutes,
		&exam.Sections, &exam.Active, &exam.CreatedAt, &exam.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	if exam.Questions, err = r.questionsForExam(ctx, examID); err != nil {
		return nil, err
	}
	return exam, nil
}

// ListForSection returns all active exams assigned to a section, questions
// included, ordered by creation time.
func (r *ExamRepository) ListForSection(ctx context.Context, section string) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, duration_minutes, sections, active,
		        created_at, updated_at
		 FROM exams
		 WHERE active = TRUE AND $1 = ANY(sections)
		 ORDER BY created_at ASC`, section,
	)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.DurationMinutes,
			&e.Sections, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range exams {
		if exams[i].Questions, err = r.questionsForExam(ctx, exams[i].ID); err != nil {
			return nil, err
		}
	}
	return exams, nil
}

// Create inserts an exam definition and its questions. Used by seeding and
// the authoring surface, which lives outside this service.
func (r *ExamRepository) Create(ctx context.Context, exam *model.Exam) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO exams (id, title, description, duration_minutes, sections, active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		exam.ID, exam.Title, exam.Description, exam.DurationMinutes,
		exam.Sections, exam.Active,
	)
	if err != nil {
		return fmt.Errorf("insert exam: %w", err)
	}

	for i := range exam.Questions {
		q := &exam.Questions[i]
		var testCases []byte
		if len(q.TestCases) > 0 {
			if testCases, err = json.Marshal(q.TestCases); err != nil {
				return fmt.Errorf("encode test cases: %w", err)
			}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO questions
			   (id, exam_id, kind, text, points, options, correct_option_index,
			    accepted_answers, test_cases, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (id) DO NOTHING`,
			q.ID, exam.ID, q.Kind, q.Text, q.Points, q.Options,
			q.CorrectOptionIndex, q.AcceptedAnswers, testCases, q.OrderNum,
		)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *ExamRepository) questionsForExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, text, points, options, correct_option_index,
		        accepted_answers, test_cases, order_num
		 FROM questions
		 WHERE exam_id = $1
		 ORDER BY order_num ASC`, examID,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var testCases []byte
		if err := rows.Scan(&q.ID, &q.Kind, &q.Text, &q.Points, &q.Options,
			&q.CorrectOptionIndex, &q.AcceptedAnswers, &testCases, &q.OrderNum); err != nil {
			return nil, err
		}
		if len(testCases) > 0 {
			if err := json.Unmarshal(testCases, &q.TestCases); err != nil {
				return nil, fmt.Errorf("decode test cases: %w", err)
			}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
