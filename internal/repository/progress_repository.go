package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/store"
)

// ProgressRepository is the Postgres store of record for progress records.
// It satisfies store.Remote.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// Read fetches the record for one (student, exam) pair.
func (r *ProgressRepository) Read(ctx context.Context, studentID string, examID uuid.UUID) (*model.ProgressRecord, error) {
	rec := &model.ProgressRecord{}
	var answers []byte
	err := r.pool.QueryRow(ctx,
		`SELECT student_id, exam_id, current_question_index, answers, status,
		        started_at, last_updated, score, max_score
		 FROM progress_records
		 WHERE student_id = $1 AND exam_id = $2`, studentID, examID,
	).Scan(&rec.StudentID, &rec.ExamID, &rec.CurrentQuestionIndex, &answers,
		&rec.Status, &rec.StartedAt, &rec.LastUpdated, &rec.Score, &rec.MaxScore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read progress: %w", err)
	}

	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	return rec, nil
}

// Upsert writes the whole record, keyed on (student_id, exam_id) so a
// replayed snapshot is idempotent. started_at is kept from the first write.
// The WHERE guard mirrors the reconciler: a completed snapshot always lands,
// anything else only replaces a non-completed row it is not older than.
func (r *ProgressRepository) Upsert(ctx context.Context, rec *model.ProgressRecord) error {
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO progress_records
		   (student_id, exam_id, current_question_index, answers, status,
		    started_at, last_updated, score, max_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (student_id, exam_id) DO UPDATE
		 SET current_question_index = EXCLUDED.current_question_index,
		     answers      = EXCLUDED.answers,
		     status       = EXCLUDED.status,
		     last_updated = EXCLUDED.last_updated,
		     score        = EXCLUDED.score,
		     max_score    = EXCLUDED.max_score
			 WHERE EXCLUDED.status = 'COMPLETED'
			    OR (progress_records.status <> 'COMPLETED'
			        AND progress_records.last_updated <= EXCLUDED.last_updated)`,
		rec.StudentID, rec.ExamID, rec.CurrentQuestionIndex, answers, rec.Status,
		rec.StartedAt, rec.LastUpdated, rec.Score, rec.MaxScore,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// ExamResult combines roster data with a finished attempt for teacher views.
type ExamResult struct {
	StudentID   string               `json:"student_id"`
	Name        string               `json:"name"`
	Section     string               `json:"section"`
	Score       float64              `json:"score"`
	MaxScore    float64              `json:"max_score"`
	Status      model.ProgressStatus `json:"status"`
	StartedAt   *time.Time           `json:"started_at,omitempty"`
	LastUpdated *time.Time           `json:"last_updated,omitempty"`
}

// ListByExam retrieves all attempts recorded for one exam, roster-joined.
func (r *ProgressRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.student_id, s.name, s.section, p.score, p.max_score,
		        p.status, p.started_at, p.last_updated
		 FROM progress_records p
		 JOIN students s ON s.id = p.student_id
		 WHERE p.exam_id = $1
		 ORDER BY s.section ASC, s.name ASC`, examID,
	)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var results []ExamResult
	for rows.Next() {
		var res ExamResult
		if err := rows.Scan(&res.StudentID, &res.Name, &res.Section, &res.Score,
			&res.MaxScore, &res.Status, &res.StartedAt, &res.LastUpdated); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
