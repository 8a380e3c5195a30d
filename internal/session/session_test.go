package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sujittra/Uni-Exam/internal/coderunner"
	"github.com/sujittra/Uni-Exam/internal/model"
	"github.com/sujittra/Uni-Exam/internal/store"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func pairKey(studentID string, examID uuid.UUID) string {
	return studentID + "/" + examID.String()
}

type memLocal struct {
	mu   sync.Mutex
	recs map[string]*model.ProgressRecord
}

func newMemLocal() *memLocal {
	return &memLocal{recs: make(map[string]*model.ProgressRecord)}
}

func (m *memLocal) Read(_ context.Context, studentID string, examID uuid.UUID) (*model.ProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[pairKey(studentID, examID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *memLocal) Write(_ context.Context, rec *model.ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[pairKey(rec.StudentID, rec.ExamID)] = rec.Clone()
	return nil
}

type memRemote struct {
	mu          sync.Mutex
	recs        map[string]*model.ProgressRecord
	upserts     int
	failUpserts bool
}

func newMemRemote() *memRemote {
	return &memRemote{recs: make(map[string]*model.ProgressRecord)}
}

func (m *memRemote) Read(_ context.Context, studentID string, examID uuid.UUID) (*model.ProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[pairKey(studentID, examID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *memRemote) Upsert(_ context.Context, rec *model.ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpserts {
		return errors.New("remote store unavailable")
	}
	m.upserts++
	m.recs[pairKey(rec.StudentID, rec.ExamID)] = rec.Clone()
	return nil
}

func (m *memRemote) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

func (m *memRemote) get(studentID string, examID uuid.UUID) *model.ProgressRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recs[pairKey(studentID, examID)]
}

type memQueue struct {
	mu    sync.Mutex
	items []*model.ProgressRecord
}

func (m *memQueue) Enqueue(_ context.Context, rec *model.ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, rec.Clone())
	return nil
}

func (m *memQueue) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// fakeRunner returns a fixed result, optionally running a hook between
// request and response to simulate concurrent activity.
type fakeRunner struct {
	result coderunner.Result
	err    error
	hook   func()
}

func (r *fakeRunner) Execute(_ context.Context, _ string, _ []model.TestCase) (coderunner.Result, error) {
	if r.hook != nil {
		r.hook()
	}
	return r.result, r.err
}

type fakeExams map[uuid.UUID]*model.Exam

func (f fakeExams) GetByID(_ context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, ok := f[examID]
	if !ok {
		return nil, fmt.Errorf("exam %s not found", examID)
	}
	return exam, nil
}

// ─── Fixtures ───────────────────────────────────────────────────────────────

const testStudentID = "64001"

func testExam() *model.Exam {
	return &model.Exam{
		ID:              uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Title:           "CS101 Midterm",
		DurationMinutes: 1,
		Sections:        []string{"SEC01"},
		Active:          true,
		Questions: []model.Question{
			{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"),
				Kind: model.QuestionKindMultipleChoice, Points: 5,
				Options: []string{"String", "char"}, CorrectOptionIndex: 0, OrderNum: 1},
			{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002"),
				Kind: model.QuestionKindShortAnswer, Points: 5,
				AcceptedAnswers: []string{"final"}, OrderNum: 2},
			{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000003"),
				Kind: model.QuestionKindCode, Points: 20,
				TestCases: []model.TestCase{{Input: "1 2", Expected: "3"}}, OrderNum: 3},
		},
	}
}

type fixture struct {
	clock  *fakeClock
	local  *memLocal
	remote *memRemote
	queue  *memQueue
	stores *store.Adapter
	runner *fakeRunner
	exam   *model.Exam
}

func newFixture() *fixture {
	f := &fixture{
		clock:  newFakeClock(),
		local:  newMemLocal(),
		remote: newMemRemote(),
		queue:  &memQueue{},
		runner: &fakeRunner{result: coderunner.Result{Passed: true, Report: "ok"}},
		exam:   testExam(),
	}
	f.stores = store.NewAdapter(f.local, f.remote, f.queue, zerolog.Nop())
	return f
}

// newSession builds a live session directly, bypassing the controller.
func (f *fixture) newSession() *Session {
	return &Session{
		exam: f.exam,
		rec: &model.ProgressRecord{
			StudentID: testStudentID,
			ExamID:    f.exam.ID,
			Answers:   model.AnswerSet{},
			Status:    model.ProgressInProgress,
			StartedAt: f.clock.Now(),
		},
		stores:       f.stores,
		runner:       f.runner,
		log:          zerolog.Nop(),
		now:          f.clock.Now,
		subscribers:  make(map[chan Event]struct{}),
		tickInterval: time.Second,
		syncInterval: 30 * time.Second,
		stop:         make(chan struct{}),
	}
}

func (f *fixture) newController() *Controller {
	// A huge tick interval keeps background goroutines quiet; tests drive
	// the timer by hand.
	c := NewController(fakeExams{f.exam.ID: f.exam}, f.stores, f.runner,
		time.Hour, 30*time.Second, zerolog.Nop())
	c.now = f.clock.Now
	return c
}

func mcqAnswer(idx int) model.Answer {
	return model.Answer{Kind: model.QuestionKindMultipleChoice, SelectedIndex: &idx}
}

// ─── Timer ──────────────────────────────────────────────────────────────────

func TestRemainingComputedFromStart(t *testing.T) {
	f := newFixture()
	s := f.newSession()

	if got := s.Remaining(); got != time.Minute {
		t.Errorf("remaining at start = %v, want 1m", got)
	}

	f.clock.Advance(15 * time.Second)
	if got := s.Remaining(); got != 45*time.Second {
		t.Errorf("remaining after 15s = %v, want 45s", got)
	}

	f.clock.Advance(2 * time.Minute)
	if got := s.Remaining(); got != 0 {
		t.Errorf("remaining past expiry = %v, want 0", got)
	}
}

func TestTickForcesSubmissionExactlyOnce(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()

	q := f.exam.Questions[0].ID
	if err := s.Answer(ctx, q, mcqAnswer(0)); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	f.clock.Advance(61 * time.Second)
	s.tick()

	snap := s.Snapshot()
	if snap.Status != model.ProgressCompleted {
		t.Fatalf("status = %v, want COMPLETED", snap.Status)
	}
	if snap.Score != 5 || snap.MaxScore != 30 {
		t.Errorf("score = %v/%v, want 5/30", snap.Score, snap.MaxScore)
	}
	if got := f.remote.upsertCount(); got != 1 {
		t.Errorf("remote upserts = %d, want 1", got)
	}

	// Further ticks must not complete or push again.
	s.tick()
	s.tick()
	if got := f.remote.upsertCount(); got != 1 {
		t.Errorf("remote upserts after extra ticks = %d, want 1", got)
	}
}

func TestTickSyncCadenceFiresOncePerBoundary(t *testing.T) {
	f := newFixture()
	s := f.newSession()

	f.clock.Advance(30 * time.Second)
	base := f.queue.len()

	s.tick()
	s.tick() // same elapsed second, must not re-fire
	if got := f.queue.len() - base; got != 1 {
		t.Errorf("queued snapshots at 30s boundary = %d, want 1", got)
	}

	f.clock.Advance(time.Second)
	s.tick() // 31s elapsed, not a boundary
	if got := f.queue.len() - base; got != 1 {
		t.Errorf("queued snapshots at 31s = %d, want 1", got)
	}
}

// ─── Mutations ──────────────────────────────────────────────────────────────

func TestAnswerPersistsAndRescores(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()

	if err := s.Answer(ctx, f.exam.Questions[0].ID, mcqAnswer(0)); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	snap := s.Snapshot()
	if snap.Score != 5 {
		t.Errorf("score = %v, want 5", snap.Score)
	}

	cached, err := f.local.Read(ctx, testStudentID, f.exam.ID)
	if err != nil {
		t.Fatalf("local read: %v", err)
	}
	if cached.Score != 5 {
		t.Errorf("cached score = %v, want 5", cached.Score)
	}
	if f.queue.len() == 0 {
		t.Error("expected a queued remote snapshot after answering")
	}
}

func TestAnswerValidation(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()

	if err := s.Answer(ctx, uuid.New(), mcqAnswer(0)); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("unknown question: err = %v, want ErrUnknownQuestion", err)
	}

	short := model.Answer{Kind: model.QuestionKindShortAnswer, Text: "final"}
	if err := s.Answer(ctx, f.exam.Questions[0].ID, short); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("kind mismatch: err = %v, want ErrKindMismatch", err)
	}

	if err := s.Answer(ctx, f.exam.Questions[0].ID, mcqAnswer(7)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("option out of range: err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestNavigateBounds(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()

	if err := s.Navigate(ctx, 2); err != nil {
		t.Fatalf("Navigate(2): %v", err)
	}
	if got := s.Snapshot().CurrentQuestionIndex; got != 2 {
		t.Errorf("index = %d, want 2", got)
	}

	if err := s.Navigate(ctx, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Navigate(3): err = %v, want ErrIndexOutOfRange", err)
	}
	if err := s.Navigate(ctx, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Navigate(-1): err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestMutationsRefusedAfterCompletion(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()

	if _, err := s.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := s.Answer(ctx, f.exam.Questions[0].ID, mcqAnswer(0)); !errors.Is(err, ErrCompleted) {
		t.Errorf("Answer after completion: err = %v, want ErrCompleted", err)
	}
	if err := s.Navigate(ctx, 1); !errors.Is(err, ErrCompleted) {
		t.Errorf("Navigate after completion: err = %v, want ErrCompleted", err)
	}
	if _, err := s.RunCode(ctx, f.exam.Questions[2].ID, "class S {}"); !errors.Is(err, ErrCompleted) {
		t.Errorf("RunCode after completion: err = %v, want ErrCompleted", err)
	}
}

// ─── Code answers ───────────────────────────────────────────────────────────

func TestRunCodeRecordsServerResult(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()
	codeQ := f.exam.Questions[2].ID

	result, err := s.RunCode(ctx, codeQ, "class S {}")
	if err != nil {
		t.Fatalf("RunCode: %v", err)
	}
	if !result.Passed {
		t.Errorf("passed = false, want true")
	}

	ans := s.Snapshot().Answers[codeQ]
	if ans.Code == nil || !ans.Code.HasRun || !ans.Code.LastPassed {
		t.Errorf("stored code answer = %+v, want run+passed recorded", ans.Code)
	}
	if got := s.Snapshot().Score; got != 20 {
		t.Errorf("score = %v, want 20", got)
	}
}

func TestClientCannotInjectPassFlags(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()
	codeQ := f.exam.Questions[2].ID

	forged := model.Answer{Kind: model.QuestionKindCode,
		Code: &model.CodeAnswer{Source: "class S {}", HasRun: true, LastPassed: true}}
	if err := s.Answer(ctx, codeQ, forged); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	ans := s.Snapshot().Answers[codeQ]
	if ans.Code.HasRun || ans.Code.LastPassed {
		t.Errorf("stored flags = %+v, client-supplied pass flags must be dropped", ans.Code)
	}
}

func TestSourceEditInvalidatesPass(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()
	codeQ := f.exam.Questions[2].ID

	if _, err := s.RunCode(ctx, codeQ, "class V1 {}"); err != nil {
		t.Fatalf("RunCode: %v", err)
	}

	// Resubmitting the identical source keeps the recorded pass.
	same := model.Answer{Kind: model.QuestionKindCode, Code: &model.CodeAnswer{Source: "class V1 {}"}}
	if err := s.Answer(ctx, codeQ, same); err != nil {
		t.Fatalf("Answer same source: %v", err)
	}
	if ans := s.Snapshot().Answers[codeQ]; !ans.Code.LastPassed {
		t.Error("identical source must keep the recorded pass")
	}

	// An edit drops it.
	edited := model.Answer{Kind: model.QuestionKindCode, Code: &model.CodeAnswer{Source: "class V2 {}"}}
	if err := s.Answer(ctx, codeQ, edited); err != nil {
		t.Fatalf("Answer edited source: %v", err)
	}
	ans := s.Snapshot().Answers[codeQ]
	if ans.Code.HasRun || ans.Code.LastPassed {
		t.Errorf("flags after edit = %+v, want cleared", ans.Code)
	}
	if got := s.Snapshot().Score; got != 0 {
		t.Errorf("score after edit = %v, want 0", got)
	}
}

func TestStaleRunResultDiscarded(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()
	codeQ := f.exam.Questions[2].ID

	// While the run is in flight, the student edits the source.
	f.runner.hook = func() {
		edited := model.Answer{Kind: model.QuestionKindCode, Code: &model.CodeAnswer{Source: "class V2 {}"}}
		if err := s.Answer(ctx, codeQ, edited); err != nil {
			t.Errorf("concurrent Answer: %v", err)
		}
	}

	if _, err := s.RunCode(ctx, codeQ, "class V1 {}"); err != nil {
		t.Fatalf("RunCode: %v", err)
	}

	ans := s.Snapshot().Answers[codeQ]
	if ans.Code.Source != "class V2 {}" {
		t.Errorf("source = %q, want the edited version", ans.Code.Source)
	}
	if ans.Code.HasRun || ans.Code.LastPassed {
		t.Errorf("flags = %+v, stale run result must not bind to edited source", ans.Code)
	}
}

// ─── Submission ─────────────────────────────────────────────────────────────

func TestSubmitIdempotent(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()

	if err := s.Answer(ctx, f.exam.Questions[0].ID, mcqAnswer(0)); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	first, err := s.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if first.Total != 5 || first.Max != 30 {
		t.Errorf("first submit = %v/%v, want 5/30", first.Total, first.Max)
	}

	second, err := s.Submit(ctx)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if second != first {
		t.Errorf("second submit = %+v, want %+v", second, first)
	}
	if got := f.remote.upsertCount(); got != 1 {
		t.Errorf("remote upserts = %d, want 1 (second submit must not push)", got)
	}
}

func TestSubmitRemoteFailureSurfacesAndResyncRecovers(t *testing.T) {
	f := newFixture()
	s := f.newSession()
	ctx := context.Background()

	f.remote.failUpserts = true
	result, err := s.Submit(ctx)
	if !errors.Is(err, ErrFinalSync) {
		t.Fatalf("Submit err = %v, want ErrFinalSync", err)
	}
	if result.Max != 30 {
		t.Errorf("result still returned: max = %v, want 30", result.Max)
	}

	// Local must hold COMPLETED even though the remote push failed.
	cached, err := f.local.Read(ctx, testStudentID, f.exam.ID)
	if err != nil {
		t.Fatalf("local read: %v", err)
	}
	if cached.Status != model.ProgressCompleted {
		t.Errorf("cached status = %v, want COMPLETED", cached.Status)
	}
	if f.queue.len() == 0 {
		t.Error("expected the failed final push to be queued for retry")
	}

	// Manual resync once the store is reachable again.
	f.remote.failUpserts = false
	if err := s.Resync(ctx); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if rec := f.remote.get(testStudentID, f.exam.ID); rec == nil || rec.Status != model.ProgressCompleted {
		t.Errorf("remote record after resync = %+v, want COMPLETED", rec)
	}
}

// ─── Controller: open, resume, refuse ───────────────────────────────────────

func TestOpenFreshStartsAtFirstQuestion(t *testing.T) {
	f := newFixture()
	c := f.newController()
	defer c.Shutdown()
	student := &model.Student{ID: testStudentID, Section: "SEC01"}

	sess, err := c.Open(context.Background(), student, f.exam.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	snap := sess.Snapshot()
	if snap.Status != model.ProgressInProgress {
		t.Errorf("status = %v, want IN_PROGRESS", snap.Status)
	}
	if snap.CurrentQuestionIndex != 0 || len(snap.Answers) != 0 {
		t.Errorf("fresh record = idx %d, %d answers; want 0, 0",
			snap.CurrentQuestionIndex, len(snap.Answers))
	}
	if !snap.StartedAt.Equal(f.clock.Now()) {
		t.Errorf("startedAt = %v, want %v", snap.StartedAt, f.clock.Now())
	}
	if _, err := f.local.Read(context.Background(), testStudentID, f.exam.ID); err != nil {
		t.Errorf("opened attempt not persisted locally: %v", err)
	}
}

func TestOpenResumeKeepsOriginalClock(t *testing.T) {
	f := newFixture()
	student := &model.Student{ID: testStudentID, Section: "SEC01"}
	ctx := context.Background()

	c1 := f.newController()
	sess, err := c1.Open(ctx, student, f.exam.ID)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := sess.Answer(ctx, f.exam.Questions[0].ID, mcqAnswer(0)); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := sess.Navigate(ctx, 1); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	started := sess.Snapshot().StartedAt
	c1.Shutdown()

	// 15 seconds later on a fresh process: answers, position and the
	// original start must survive.
	f.clock.Advance(15 * time.Second)
	c2 := f.newController()
	defer c2.Shutdown()

	resumed, err := c2.Open(ctx, student, f.exam.ID)
	if err != nil {
		t.Fatalf("resume Open: %v", err)
	}
	snap := resumed.Snapshot()
	if !snap.StartedAt.Equal(started) {
		t.Errorf("startedAt = %v, want original %v", snap.StartedAt, started)
	}
	if snap.CurrentQuestionIndex != 1 {
		t.Errorf("index = %d, want 1", snap.CurrentQuestionIndex)
	}
	if len(snap.Answers) != 1 {
		t.Errorf("answers = %d, want 1", len(snap.Answers))
	}
	if got := resumed.Remaining(); got != 45*time.Second {
		t.Errorf("remaining = %v, want 45s", got)
	}
}

func TestOpenCompletedAttemptRefused(t *testing.T) {
	f := newFixture()
	student := &model.Student{ID: testStudentID, Section: "SEC01"}
	ctx := context.Background()

	c1 := f.newController()
	sess, err := c1.Open(ctx, student, f.exam.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := sess.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	c1.Shutdown()

	c2 := f.newController()
	defer c2.Shutdown()
	if _, err := c2.Open(ctx, student, f.exam.ID); !errors.Is(err, ErrCompleted) {
		t.Errorf("reopen err = %v, want ErrCompleted", err)
	}
}

func TestOpenExpiredWhileAwayCompletesWithSurvivingAnswers(t *testing.T) {
	f := newFixture()
	student := &model.Student{ID: testStudentID, Section: "SEC01"}
	ctx := context.Background()

	c1 := f.newController()
	sess, err := c1.Open(ctx, student, f.exam.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := sess.Answer(ctx, f.exam.Questions[0].ID, mcqAnswer(0)); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	c1.Shutdown()

	// The student disappears past the deadline.
	f.clock.Advance(2 * time.Minute)
	c2 := f.newController()
	defer c2.Shutdown()

	if _, err := c2.Open(ctx, student, f.exam.ID); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expired open err = %v, want ErrCompleted", err)
	}

	rec := f.remote.get(testStudentID, f.exam.ID)
	if rec == nil || rec.Status != model.ProgressCompleted {
		t.Fatalf("remote record = %+v, want COMPLETED", rec)
	}
	if rec.Score != 5 {
		t.Errorf("score = %v, want 5 (the surviving answer)", rec.Score)
	}
}

func TestOpenEligibilityChecks(t *testing.T) {
	f := newFixture()
	c := f.newController()
	defer c.Shutdown()
	ctx := context.Background()

	wrongSection := &model.Student{ID: "64002", Section: "SEC02"}
	if _, err := c.Open(ctx, wrongSection, f.exam.ID); !errors.Is(err, ErrNotEligible) {
		t.Errorf("wrong section err = %v, want ErrNotEligible", err)
	}

	f.exam.Active = false
	student := &model.Student{ID: testStudentID, Section: "SEC01"}
	if _, err := c.Open(ctx, student, f.exam.ID); !errors.Is(err, ErrExamInactive) {
		t.Errorf("inactive exam err = %v, want ErrExamInactive", err)
	}
}

func TestOpenReusesLiveSession(t *testing.T) {
	f := newFixture()
	c := f.newController()
	defer c.Shutdown()
	student := &model.Student{ID: testStudentID, Section: "SEC01"}
	ctx := context.Background()

	first, err := c.Open(ctx, student, f.exam.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	second, err := c.Open(ctx, student, f.exam.ID)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if first != second {
		t.Error("second Open must return the same live session")
	}
}

// ─── Controller: reconciliation paths ───────────────────────────────────────

func TestReconciledFillsMissingSide(t *testing.T) {
	f := newFixture()
	c := f.newController()
	defer c.Shutdown()
	ctx := context.Background()

	// Only the remote copy exists, as after a cache wipe.
	seed := &model.ProgressRecord{
		StudentID:   testStudentID,
		ExamID:      f.exam.ID,
		Answers:     model.AnswerSet{},
		Status:      model.ProgressInProgress,
		StartedAt:   f.clock.Now(),
		LastUpdated: f.clock.Now(),
	}
	if err := f.remote.Upsert(ctx, seed); err != nil {
		t.Fatalf("seed remote: %v", err)
	}

	rec, err := c.Reconciled(ctx, testStudentID, f.exam.ID)
	if err != nil {
		t.Fatalf("Reconciled: %v", err)
	}
	if rec == nil || rec.Status != model.ProgressInProgress {
		t.Fatalf("winner = %+v, want the remote record", rec)
	}

	if _, err := f.local.Read(ctx, testStudentID, f.exam.ID); err != nil {
		t.Errorf("fill push did not reach the cache: %v", err)
	}
}

func TestControllerResyncWithoutLiveSession(t *testing.T) {
	f := newFixture()
	student := &model.Student{ID: testStudentID, Section: "SEC01"}
	ctx := context.Background()

	// Complete an attempt while the remote store is down.
	c1 := f.newController()
	sess, err := c1.Open(ctx, student, f.exam.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	f.remote.failUpserts = true
	if _, err := sess.Submit(ctx); !errors.Is(err, ErrFinalSync) {
		t.Fatalf("Submit err = %v, want ErrFinalSync", err)
	}
	c1.Shutdown()

	// A later login, new process, store back up: resync from the cache copy.
	f.remote.failUpserts = false
	c2 := f.newController()
	defer c2.Shutdown()
	if err := c2.Resync(ctx, testStudentID, f.exam.ID); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if rec := f.remote.get(testStudentID, f.exam.ID); rec == nil || rec.Status != model.ProgressCompleted {
		t.Errorf("remote after resync = %+v, want COMPLETED", rec)
	}
}

// ─── Events ─────────────────────────────────────────────────────────────────

func TestCompletionEventEmitted(t *testing.T) {
	f := newFixture()
	s := f.newSession()

	events := s.Subscribe()
	defer s.Unsubscribe(events)

	f.clock.Advance(61 * time.Second)
	s.tick()

	var sawCompleted bool
	for done := false; !done; {
		select {
		case ev := <-events:
			if ev.Type == EventCompleted {
				sawCompleted = true
				if !ev.Forced {
					t.Error("expiry completion must be flagged forced")
				}
				if ev.MaxScore != 30 {
					t.Errorf("event max score = %v, want 30", ev.MaxScore)
				}
				done = true
			}
		default:
			done = true
		}
	}
	if !sawCompleted {
		t.Error("no completed event received after forced submission")
	}
}
