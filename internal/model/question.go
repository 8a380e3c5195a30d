package model

import (
	"errors"

	"github.com/google/uuid"
)

// QuestionKind enumerates the supported question kinds.
type QuestionKind string

const (
	QuestionKindMultipleChoice QuestionKind = "MULTIPLE_CHOICE"
	QuestionKindShortAnswer    QuestionKind = "SHORT_ANSWER"
	QuestionKindCode           QuestionKind = "CODE"
)

// TestCase is one (input, expected output) pair for a code question.
// Outputs are compared under the same normalization as short answers.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// Question represents a single exam question. Grading data is kind-specific:
// multiple choice uses Options + CorrectOptionIndex, short answer uses
// AcceptedAnswers, code uses TestCases.
type Question struct {
	ID                 uuid.UUID    `json:"id"`
	Kind               QuestionKind `json:"kind"`
	Text               string       `json:"text"`
	Points             float64      `json:"points"`
	Options            []string     `json:"options,omitempty"`
	CorrectOptionIndex int          `json:"correct_option_index,omitempty"`
	AcceptedAnswers    []string     `json:"accepted_answers,omitempty"`
	TestCases          []TestCase   `json:"test_cases,omitempty"`
	OrderNum           int          `json:"order_num"`
}

// ValidateGradingData checks the kind-specific grading data is present.
func (q *Question) ValidateGradingData() error {
	if q.Points < 0 {
		return errors.New("question points must be non-negative")
	}
	switch q.Kind {
	case QuestionKindMultipleChoice:
		if len(q.Options) == 0 {
			return errors.New("multiple choice question has no options")
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return errors.New("correct option index out of range")
		}
	case QuestionKindShortAnswer:
		if len(q.AcceptedAnswers) == 0 {
			return errors.New("short answer question has no accepted answers")
		}
	case QuestionKindCode:
		if len(q.TestCases) == 0 {
			return errors.New("code question has no test cases")
		}
	default:
		return errors.New("unknown question kind: " + string(q.Kind))
	}
	return nil
}

// QuestionForStudent is a question without grading data, sent to students.
// Test cases stay visible: the original exam UI shows expected I/O.
type QuestionForStudent struct {
	ID        uuid.UUID    `json:"id"`
	Kind      QuestionKind `json:"kind"`
	Text      string       `json:"text"`
	Points    float64      `json:"points"`
	Options   []string     `json:"options,omitempty"`
	TestCases []TestCase   `json:"test_cases,omitempty"`
	OrderNum  int          `json:"order_num"`
}
