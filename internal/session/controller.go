package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/coderunner"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/reconcile"
	"github.com/sujittra/Uni-Exam/internal/scoring"
	"github.com/sujittra/Uni-Exam/internal/store"
)

// ExamSource provides exam definition snapshots.
type ExamSource interface {
	GetByID(ctx context.Context, examID uuid.UUID) (*model.Exam, error)
}

// Key identifies one logical attempt.
type Key struct {
	StudentID string
	ExamID    uuid.UUID
}

// Controller owns all live sessions, one per (student, exam) pair, and
// orchestrates start/resume through the reconciler.
type Controller struct {
	mu       sync.Mutex
	sessions map[Key]*Session

	exams  ExamSource
	stores *store.Adapter
	runner coderunner.Runner
	log    zerolog.Logger

	tickInterval time.Duration
	syncInterval time.Duration
	now          func() time.Time
}

// NewController creates a session controller.
func NewController(exams ExamSource, stores *store.Adapter, runner coderunner.Runner, tickInterval, syncInterval time.Duration, log zerolog.Logger) *Controller {
	return &Controller{
		sessions:     make(map[Key]*Session),
		exams:        exams,
		stores:       stores,
		runner:       runner,
		log:          log.With().Str("component", "session_controller").Logger(),
		tickInterval: tickInterval,
		syncInterval: syncInterval,
		now:          time.Now,
	}
}

// Open begins or resumes an attempt. The reconciled record decides the
// resume point; a reconciled COMPLETED record refuses the attempt. An
// attempt whose time already ran out while the student was away is
// completed immediately with whatever answers survived.
func (c *Controller) Open(ctx context.Context, student *model.Student, examID uuid.UUID) (*Session, error) {
	key := Key{StudentID: student.ID, ExamID: examID}

	c.mu.Lock()
	if existing, ok := c.sessions[key]; ok {
		c.mu.Unlock()
		if existing.Snapshot().Status == model.ProgressCompleted {
			return nil, ErrCompleted
		}
		return existing, nil
	}
	c.mu.Unlock()

	exam, err := c.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if !exam.Active {
		return nil, ErrExamInactive
	}
	if !exam.AssignedTo(student.Section) {
		return nil, ErrNotEligible
	}

	rec, err := c.reconciledRecord(ctx, student.ID, examID)
	if err != nil {
		return nil, err
	}
	if rec != nil && rec.Status == model.ProgressCompleted {
		return nil, ErrCompleted
	}

	now := c.now()
	if rec == nil {
		res := scoring.Score(exam, nil)
		rec = &model.ProgressRecord{
			StudentID: student.ID,
			ExamID:    examID,
			Answers:   model.AnswerSet{},
			Status:    model.ProgressInProgress,
			StartedAt: now,
			MaxScore:  res.Max,
		}
	} else {
		rec = rec.Clone()
		rec.Status = model.ProgressInProgress
		if rec.Answers == nil {
			rec.Answers = model.AnswerSet{}
		}
		// startedAt is set once; a resumed attempt keeps the original so
		// elapsed wall-clock always counts against the student.
		if rec.StartedAt.IsZero() {
			rec.StartedAt = now
		}
		if rec.CurrentQuestionIndex < 0 || rec.CurrentQuestionIndex >= len(exam.Questions) {
			rec.CurrentQuestionIndex = 0
		}
	}

	sess := &Session{
		exam:         exam,
		rec:          rec,
		stores:       c.stores,
		runner:       c.runner,
		log:          c.log.With().Str("student_id", student.ID).Str("exam_id", examID.String()).Logger(),
		now:          c.now,
		subscribers:  make(map[chan Event]struct{}),
		tickInterval: c.tickInterval,
		syncInterval: c.syncInterval,
		stop:         make(chan struct{}),
	}

	// Time may already be up after a long disconnect: complete right away,
	// never hand out a writable session.
	if now.Sub(rec.StartedAt) >= exam.Duration() {
		sess.mu.Lock()
		_, cErr := sess.completeLocked(ctx, true)
		sess.mu.Unlock()
		if cErr != nil {
			return nil, errors.Join(ErrCompleted, cErr)
		}
		return nil, ErrCompleted
	}

	sess.mu.Lock()
	err = sess.persistLocked(ctx)
	sess.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("persist opened attempt: %w", err)
	}

	c.mu.Lock()
	// Another request may have opened the pair concurrently; keep the
	// first registered session as the single writer.
	if existing, ok := c.sessions[key]; ok {
		c.mu.Unlock()
		sess.stopTicking()
		return existing, nil
	}
	c.sessions[key] = sess
	c.mu.Unlock()

	go sess.run()
	return sess, nil
}

// Get returns the live session for a pair, if any.
func (c *Controller) Get(studentID string, examID uuid.UUID) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[Key{StudentID: studentID, ExamID: examID}]
	return sess, ok
}

// Resync pushes the current authoritative record back to the remote store.
// Works with or without a live session, so a student can recover after a
// failed final submission even from a fresh login.
func (c *Controller) Resync(ctx context.Context, studentID string, examID uuid.UUID) error {
	if sess, ok := c.Get(studentID, examID); ok {
		return sess.Resync(ctx)
	}

	rec, err := c.reconciledRecord(ctx, studentID, examID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNoSession
	}
	return c.stores.UpsertRemote(ctx, rec)
}

// Reconciled returns the authoritative record for a pair without opening a
// session. Used by the lobby to label exams Not Started / Resume /
// Completed. The reconciler's fill push is executed here.
func (c *Controller) Reconciled(ctx context.Context, studentID string, examID uuid.UUID) (*model.ProgressRecord, error) {
	return c.reconciledRecord(ctx, studentID, examID)
}

func (c *Controller) reconciledRecord(ctx context.Context, studentID string, examID uuid.UUID) (*model.ProgressRecord, error) {
	local, remote, err := c.stores.ReadBoth(ctx, studentID, examID)
	if err != nil {
		return nil, err
	}

	winner, push := reconcile.Reconcile(local, remote)
	switch push {
	case reconcile.PushLocal:
		c.stores.Propagate(ctx, winner, true)
	case reconcile.PushRemote:
		c.stores.Propagate(ctx, winner, false)
	}
	return winner, nil
}

// Shutdown stops all countdown goroutines. Records are already persisted on
// every mutation, so nothing else needs flushing here.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sess := range c.sessions {
		sess.stopTicking()
	}
}
