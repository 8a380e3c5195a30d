package session

import "errors"

// Operation errors surfaced to the HTTP layer.
var (
	// ErrCompleted: the attempt is already terminal; begin-attempt and all
	// in-progress mutations are refused.
	ErrCompleted = errors.New("exam attempt already completed")
	// ErrFinalSync: the attempt completed locally but the remote store did
	// not acknowledge the final push. Must surface to the student; the
	// manual resync path retries it.
	ErrFinalSync = errors.New("final submission could not reach the remote store")
	// ErrNotEligible: the student's section is not assigned to the exam.
	ErrNotEligible = errors.New("exam is not assigned to this student")
	// ErrExamInactive: the exam definition is not active.
	ErrExamInactive = errors.New("exam is not active")
	// ErrUnknownQuestion: the question id is not part of the bound exam.
	ErrUnknownQuestion = errors.New("question is not part of this exam")
	// ErrKindMismatch: the answer's kind does not match the question's.
	ErrKindMismatch = errors.New("answer kind does not match question kind")
	// ErrIndexOutOfRange: navigation outside [0, questionCount-1].
	ErrIndexOutOfRange = errors.New("question index out of range")
	// ErrNoSession: no live session for the pair; open the exam first.
	ErrNoSession = errors.New("no active session for this exam")
)
