package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Exam represents a published exam definition. A running session always
// binds to the snapshot fetched at attempt start; definitions are treated
// as immutable while any session references them.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DurationMinutes int        `json:"duration_minutes"`
	Sections        []string   `json:"sections"`
	Active          bool       `json:"active"`
	Questions       []Question `json:"questions"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Duration returns the exam duration as a time.Duration.
func (e *Exam) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// QuestionByID looks up a question in definition order.
func (e *Exam) QuestionByID(id uuid.UUID) *Question {
	for i := range e.Questions {
		if e.Questions[i].ID == id {
			return &e.Questions[i]
		}
	}
	return nil
}

// AssignedTo reports whether the exam targets the given section.
func (e *Exam) AssignedTo(section string) bool {
	for _, s := range e.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// ValidateForPublish checks that every question carries the grading data
// its kind requires. Called before an exam is activated.
func (e *Exam) ValidateForPublish() error {
	if e.DurationMinutes < 1 {
		return errors.New("exam duration must be at least one minute")
	}
	if len(e.Questions) == 0 {
		return errors.New("exam has no questions")
	}
	for i := range e.Questions {
		if err := e.Questions[i].ValidateGradingData(); err != nil {
			return err
		}
	}
	return nil
}

// ExamPayload is the student-facing exam snapshot (no grading data).
type ExamPayload struct {
	ExamID    uuid.UUID            `json:"exam_id"`
	Title     string               `json:"title"`
	Duration  int                  `json:"duration_minutes"`
	Questions []QuestionForStudent `json:"questions"`
}

// PayloadForStudent strips correct answers and accepted-answer sets.
func (e *Exam) PayloadForStudent() *ExamPayload {
	questions := make([]QuestionForStudent, 0, len(e.Questions))
	for _, q := range e.Questions {
		questions = append(questions, QuestionForStudent{
			ID:        q.ID,
			Kind:      q.Kind,
			Text:      q.Text,
			Points:    q.Points,
			Options:   q.Options,
			TestCases: q.TestCases,
			OrderNum:  q.OrderNum,
		})
	}
	return &ExamPayload{
		ExamID:    e.ID,
		Title:     e.Title,
		Duration:  e.DurationMinutes,
		Questions: questions,
	}
}
