package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/coderunner"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/scoring"
	"github.com/sujittra/Uni-Exam/internal/store"
)

// Session is the single-writer owner of one live attempt. Every trigger —
// HTTP mutation, timer tick, execution callback — funnels through s.mu and
// reads the current record from s.rec, never from state captured earlier.
type Session struct {
	mu          sync.Mutex
	exam        *model.Exam
	rec         *model.ProgressRecord
	stores      *store.Adapter
	runner      coderunner.Runner
	log         zerolog.Logger
	now         func() time.Time
	subscribers map[chan Event]struct{}

	tickInterval time.Duration
	syncInterval time.Duration
	// lastSyncElapsed prevents a cadence boundary from firing twice when
	// ticks land inside the same elapsed second.
	lastSyncElapsed int64

	stop     chan struct{}
	stopOnce sync.Once
}

// Exam returns the definition snapshot the session is bound to.
func (s *Session) Exam() *model.Exam {
	return s.exam
}

// Snapshot returns a deep copy of the current progress record.
func (s *Session) Snapshot() *model.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

// Remaining returns the time left, computed from the original startedAt.
// Never negative.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

func (s *Session) remainingLocked() time.Duration {
	elapsed := s.now().Sub(s.rec.StartedAt)
	remaining := s.exam.Duration() - elapsed.Truncate(time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Answer records or replaces one answer, recomputes the score and persists.
func (s *Session) Answer(ctx context.Context, questionID uuid.UUID, ans model.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.Status == model.ProgressCompleted {
		return ErrCompleted
	}

	q := s.exam.QuestionByID(questionID)
	if q == nil {
		return ErrUnknownQuestion
	}
	if ans.Kind != q.Kind {
		return ErrKindMismatch
	}
	if err := ans.Validate(); err != nil {
		return ErrKindMismatch
	}
	if ans.Kind == model.QuestionKindMultipleChoice &&
		(*ans.SelectedIndex < 0 || *ans.SelectedIndex >= len(q.Options)) {
		return ErrIndexOutOfRange
	}

	if ans.Kind == model.QuestionKindCode {
		s.guardCodeAnswer(questionID, &ans)
	}

	s.rec.Answers[questionID] = ans
	return s.persistLocked(ctx)
}

// guardCodeAnswer keeps execution results server-owned. A client can only
// submit source; the cached pass flag carries over iff the source is
// unchanged since the last recorded run, otherwise the edit invalidates it.
func (s *Session) guardCodeAnswer(questionID uuid.UUID, ans *model.Answer) {
	incoming := ans.Code
	fresh := &model.CodeAnswer{Source: incoming.Source}

	if prev, ok := s.rec.Answers[questionID]; ok && prev.Code != nil {
		if prev.Code.Source == incoming.Source {
			fresh.HasRun = prev.Code.HasRun
			fresh.LastPassed = prev.Code.LastPassed
			fresh.LastOutput = prev.Code.LastOutput
		}
	}
	ans.Code = fresh
}

// Navigate moves the current question index.
func (s *Session) Navigate(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.Status == model.ProgressCompleted {
		return ErrCompleted
	}
	if index < 0 || index >= len(s.exam.Questions) {
		return ErrIndexOutOfRange
	}

	s.rec.CurrentQuestionIndex = index
	return s.persistLocked(ctx)
}

// RunCode executes a code question's source via the collaborator and binds
// the result to the question the run was started for. If the student edits
// the source while the run is in flight, the result is discarded.
func (s *Session) RunCode(ctx context.Context, questionID uuid.UUID, source string) (coderunner.Result, error) {
	s.mu.Lock()
	if s.rec.Status == model.ProgressCompleted {
		s.mu.Unlock()
		return coderunner.Result{}, ErrCompleted
	}

	q := s.exam.QuestionByID(questionID)
	if q == nil {
		s.mu.Unlock()
		return coderunner.Result{}, ErrUnknownQuestion
	}
	if q.Kind != model.QuestionKindCode {
		s.mu.Unlock()
		return coderunner.Result{}, ErrKindMismatch
	}

	// Record the source first: an edit invalidates any earlier pass flag
	// even if this run never completes.
	ans := model.Answer{Kind: model.QuestionKindCode, Code: &model.CodeAnswer{Source: source}}
	s.guardCodeAnswer(questionID, &ans)
	s.rec.Answers[questionID] = ans
	if err := s.persistLocked(ctx); err != nil {
		s.mu.Unlock()
		return coderunner.Result{}, err
	}
	testCases := q.TestCases
	s.mu.Unlock()

	// Execution runs outside the lock; it may take seconds.
	result, err := s.runner.Execute(ctx, source, testCases)
	if err != nil {
		return coderunner.Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The attempt may have been force-submitted meanwhile; a completed
	// record never changes again.
	if s.rec.Status == model.ProgressCompleted {
		return result, nil
	}

	current, ok := s.rec.Answers[questionID]
	if !ok || current.Code == nil || current.Code.Source != source {
		// Stale run: the source changed while executing.
		return result, nil
	}

	current.Code.HasRun = true
	current.Code.LastPassed = result.Passed
	current.Code.LastOutput = result.Report
	s.rec.Answers[questionID] = current

	if err := s.persistLocked(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// Submit completes the attempt on explicit student confirmation. Idempotent:
// a second submit returns the recorded score without touching the stores.
// The remote push is awaited; its failure is surfaced as ErrFinalSync while
// the local record still holds COMPLETED.
func (s *Session) Submit(ctx context.Context) (scoring.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.Status == model.ProgressCompleted {
		return scoring.Result{Total: s.rec.Score, Max: s.rec.MaxScore}, nil
	}
	return s.completeLocked(ctx, false)
}

// Resync re-pushes the current record to the remote store. The manual
// recovery path after a failed final submission.
func (s *Session) Resync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stores.UpsertRemote(ctx, s.rec.Clone())
}

// completeLocked performs the single IN_PROGRESS → COMPLETED transition.
// Callers hold s.mu and have verified the record is not already completed.
func (s *Session) completeLocked(ctx context.Context, forced bool) (scoring.Result, error) {
	res := scoring.Score(s.exam, s.rec.Answers)
	s.rec.Status = model.ProgressCompleted
	s.rec.Score = res.Total
	s.rec.MaxScore = res.Max
	s.rec.LastUpdated = s.now()

	s.stopTicking()

	// The local cache must reflect COMPLETED even when the remote push
	// fails, so a re-attempt stays refused.
	if err := s.stores.WriteLocal(ctx, s.rec.Clone()); err != nil {
		s.log.Error().Err(err).Msg("Local write of completed record failed")
	}

	var syncErr error
	if err := s.stores.UpsertRemote(ctx, s.rec.Clone()); err != nil {
		s.log.Error().Err(err).Bool("forced", forced).Msg("Final submission push failed")
		// Leave a snapshot on the retry queue either way.
		s.stores.QueueRemote(ctx, s.rec)
		syncErr = ErrFinalSync
	}

	s.emitLocked(Event{
		Type:     EventCompleted,
		Status:   model.ProgressCompleted,
		Forced:   forced,
		Score:    res.Total,
		MaxScore: res.Max,
	})

	s.log.Info().
		Str("student_id", s.rec.StudentID).
		Str("exam_id", s.rec.ExamID.String()).
		Bool("forced", forced).
		Float64("score", res.Total).
		Float64("max_score", res.Max).
		Msg("Attempt completed")

	return res, syncErr
}

// persistLocked recomputes the score, stamps lastUpdated, writes the cache
// and queues a remote snapshot. Callers hold s.mu.
func (s *Session) persistLocked(ctx context.Context) error {
	res := scoring.Score(s.exam, s.rec.Answers)
	s.rec.Score = res.Total
	s.rec.MaxScore = res.Max
	s.rec.LastUpdated = s.now()

	if err := s.stores.WriteLocal(ctx, s.rec.Clone()); err != nil {
		return err
	}
	s.stores.QueueRemote(ctx, s.rec)
	return nil
}

// run drives the countdown. One goroutine per live session.
func (s *Session) run() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick recomputes the remaining time, fires the forced submission exactly
// once at expiry, and drives the background sync cadence. The cadence is
// derived from elapsed wall-clock, so a reload cannot desynchronize it.
func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.Status == model.ProgressCompleted {
		s.stopTicking()
		return
	}

	remaining := s.remainingLocked()
	s.emitLocked(Event{
		Type:             EventTick,
		RemainingSeconds: int64(remaining.Seconds()),
		Status:           s.rec.Status,
	})

	if remaining <= 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.completeLocked(ctx, true); err != nil {
			s.emitLocked(Event{Type: EventSyncError, Status: s.rec.Status})
		}
		return
	}

	elapsed := int64(s.now().Sub(s.rec.StartedAt).Seconds())
	syncEvery := int64(s.syncInterval.Seconds())
	if syncEvery > 0 && elapsed > 0 && elapsed%syncEvery == 0 && elapsed != s.lastSyncElapsed {
		s.lastSyncElapsed = elapsed
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.stores.QueueRemote(ctx, s.rec)
	}
}

// stopTicking halts the countdown goroutine. Safe to call repeatedly.
func (s *Session) stopTicking() {
	s.stopOnce.Do(func() { close(s.stop) })
}
