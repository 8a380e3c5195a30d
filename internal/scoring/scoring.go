// Package scoring grades an answer set against an exam definition. It is a
// pure function of its inputs: no storage, no clock, safe to call on every
// persist.
package scoring

import (
	"github.com/sujittra/Uni-Exam/internal/model"
)

// Result is the outcome of grading one attempt.
type Result struct {
	Total float64 `json:"total"`
	Max   float64 `json:"max"`
}

// Score grades answers against the exam. Max is the sum of all question
// points regardless of what was answered; missing or malformed answers
// score zero for their question. No partial credit.
func Score(exam *model.Exam, answers model.AnswerSet) Result {
	var res Result
	for i := range exam.Questions {
		q := &exam.Questions[i]
		res.Max += q.Points

		ans, ok := answers[q.ID]
		if !ok {
			continue
		}
		if scoreQuestion(q, &ans) {
			res.Total += q.Points
		}
	}
	return res
}

// scoreQuestion reports whether the answer earns the question's full points.
func scoreQuestion(q *model.Question, ans *model.Answer) bool {
	if ans.Kind != q.Kind {
		return false
	}

	switch q.Kind {
	case model.QuestionKindMultipleChoice:
		return ans.SelectedIndex != nil && *ans.SelectedIndex == q.CorrectOptionIndex

	case model.QuestionKindShortAnswer:
		if Normalize(ans.Text) == "" {
			return false
		}
		for _, accepted := range q.AcceptedAnswers {
			if Matches(ans.Text, accepted) {
				return true
			}
		}
		return false

	case model.QuestionKindCode:
		// Correctness comes from the last recorded execution result only.
		// A question that was never run, or whose source was edited after
		// its last run, counts as incorrect.
		return ans.Code != nil && ans.Code.HasRun && ans.Code.LastPassed
	}

	return false
}
