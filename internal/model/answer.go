package model

import (
	"errors"

	"github.com/google/uuid"
)

// Answer is a tagged union keyed by the question's kind. Exactly one of the
// kind-specific fields is meaningful; the others stay zero.
type Answer struct {
	Kind QuestionKind `json:"kind"`
	// MULTIPLE_CHOICE: index into the question's option list.
	SelectedIndex *int `json:"selected_index,omitempty"`
	// SHORT_ANSWER: free text.
	Text string `json:"text,omitempty"`
	// CODE: source plus the last recorded execution result.
	Code *CodeAnswer `json:"code,omitempty"`
}

// CodeAnswer carries the student's source code and the cached outcome of the
// last execution. Editing the source invalidates LastPassed until a re-run.
type CodeAnswer struct {
	Source     string `json:"source"`
	LastOutput string `json:"last_output,omitempty"`
	LastPassed bool   `json:"last_passed"`
	HasRun     bool   `json:"has_run"`
}

// Validate checks the answer value matches its declared kind.
func (a *Answer) Validate() error {
	switch a.Kind {
	case QuestionKindMultipleChoice:
		if a.SelectedIndex == nil {
			return errors.New("multiple choice answer requires selected_index")
		}
	case QuestionKindShortAnswer:
		// Empty text is allowed; it scores zero.
	case QuestionKindCode:
		if a.Code == nil {
			return errors.New("code answer requires code payload")
		}
	default:
		return errors.New("unknown answer kind: " + string(a.Kind))
	}
	return nil
}

// AnswerSet maps question id to the student's answer. Partial by design:
// unanswered questions simply have no entry.
type AnswerSet map[uuid.UUID]Answer

// Clone returns a shallow-copied set with copied CodeAnswer values, so a
// snapshot cannot be mutated through a shared pointer.
func (s AnswerSet) Clone() AnswerSet {
	if s == nil {
		return nil
	}
	out := make(AnswerSet, len(s))
	for id, a := range s {
		if a.Code != nil {
			code := *a.Code
			a.Code = &code
		}
		if a.SelectedIndex != nil {
			idx := *a.SelectedIndex
			a.SelectedIndex = &idx
		}
		out[id] = a
	}
	return out
}
