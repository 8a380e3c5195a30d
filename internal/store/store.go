// Package store defines the two progress stores and the adapter that
// reads and writes them independently.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sujittra/Uni-Exam/internal/model"
)

// ErrNotFound is returned when no record exists for a (student, exam) pair.
// An absent record is not an error condition for callers — it simply means
// a fresh start.
var ErrNotFound = errors.New("progress record not found")

// Local is the fast cache copy (Redis). Writes are awaited on the hot path
// and assumed reliable for the client's own later reads.
type Local interface {
	Read(ctx context.Context, studentID string, examID uuid.UUID) (*model.ProgressRecord, error)
	Write(ctx context.Context, rec *model.ProgressRecord) error
}

// Remote is the shared store of record (Postgres). Upsert is idempotent on
// (student_id, exam_id): replaying the same snapshot twice leaves exactly
// one logical record.
type Remote interface {
	Read(ctx context.Context, studentID string, examID uuid.UUID) (*model.ProgressRecord, error)
	Upsert(ctx context.Context, rec *model.ProgressRecord) error
}

// Queue defers a remote upsert to the background sync worker.
type Queue interface {
	Enqueue(ctx context.Context, rec *model.ProgressRecord) error
}
