package model

import (
	"time"

	"github.com/google/uuid"
)

// ProgressStatus enumerates exam attempt states.
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "NOT_STARTED"
	ProgressInProgress ProgressStatus = "IN_PROGRESS"
	ProgressCompleted  ProgressStatus = "COMPLETED"
)

// ProgressRecord is the single live record of a student's attempt at one
// exam, keyed (StudentID, ExamID). Two independently written copies exist —
// the Redis cache and the Postgres store of record — reconciled as whole
// records, never merged field by field.
type ProgressRecord struct {
	StudentID            string         `json:"student_id"`
	ExamID               uuid.UUID      `json:"exam_id"`
	CurrentQuestionIndex int            `json:"current_question_index"`
	Answers              AnswerSet      `json:"answers"`
	Status               ProgressStatus `json:"status"`
	// StartedAt is set once at the first transition to IN_PROGRESS and is
	// never overwritten; remaining time is always computed from it.
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (r *ProgressRecord) Clone() *ProgressRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Answers = r.Answers.Clone()
	return &out
}
