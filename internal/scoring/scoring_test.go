package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sujittra/Uni-Exam/internal/model"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello world"},
		{"  hello   world  ", "hello world"},
		{"HELLO\tWORLD\n", "hello world"},
		{"", ""},
		{"   ", ""},
		{"one", "one"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMatches(t *testing.T) {
	if !Matches("  Final ", "final") {
		t.Error("expected case/whitespace-insensitive match")
	}
	if Matches("final keyword", "final") {
		t.Error("different words must not match")
	}
}

func buildExam() (*model.Exam, uuid.UUID, uuid.UUID, uuid.UUID) {
	mcq := uuid.New()
	short := uuid.New()
	code := uuid.New()
	exam := &model.Exam{
		ID:              uuid.New(),
		DurationMinutes: 60,
		Questions: []model.Question{
			{ID: mcq, Kind: model.QuestionKindMultipleChoice, Points: 5,
				Options: []string{"String", "char"}, CorrectOptionIndex: 0},
			{ID: short, Kind: model.QuestionKindShortAnswer, Points: 5,
				AcceptedAnswers: []string{"final"}},
			{ID: code, Kind: model.QuestionKindCode, Points: 20,
				TestCases: []model.TestCase{{Input: "1 2", Expected: "3"}}},
		},
	}
	return exam, mcq, short, code
}

func intPtr(i int) *int { return &i }

func TestScoreEmptyAnswers(t *testing.T) {
	exam, _, _, _ := buildExam()

	res := Score(exam, nil)
	if res.Total != 0 {
		t.Errorf("total = %v, want 0", res.Total)
	}
	if res.Max != 30 {
		t.Errorf("max = %v, want 30", res.Max)
	}
}

func TestScoreAllCorrect(t *testing.T) {
	exam, mcq, short, code := buildExam()

	answers := model.AnswerSet{
		mcq:   {Kind: model.QuestionKindMultipleChoice, SelectedIndex: intPtr(0)},
		short: {Kind: model.QuestionKindShortAnswer, Text: " FINAL "},
		code: {Kind: model.QuestionKindCode,
			Code: &model.CodeAnswer{Source: "class S {}", HasRun: true, LastPassed: true}},
	}

	res := Score(exam, answers)
	if res.Total != 30 {
		t.Errorf("total = %v, want 30", res.Total)
	}
	if res.Max != 30 {
		t.Errorf("max = %v, want 30", res.Max)
	}
}

func TestScoreMultipleChoiceWrongOption(t *testing.T) {
	exam, mcq, _, _ := buildExam()

	answers := model.AnswerSet{
		mcq: {Kind: model.QuestionKindMultipleChoice, SelectedIndex: intPtr(1)},
	}
	if res := Score(exam, answers); res.Total != 0 {
		t.Errorf("total = %v, want 0", res.Total)
	}
}

func TestScoreShortAnswerNormalization(t *testing.T) {
	exam, _, short, _ := buildExam()

	cases := []struct {
		text string
		want float64
	}{
		{"final", 5},
		{"  Final\t", 5},
		{"", 0},
		{"   ", 0},
		{"static", 0},
	}
	for _, c := range cases {
		answers := model.AnswerSet{
			short: {Kind: model.QuestionKindShortAnswer, Text: c.text},
		}
		if res := Score(exam, answers); res.Total != c.want {
			t.Errorf("Score(text=%q).Total = %v, want %v", c.text, res.Total, c.want)
		}
	}
}

func TestScoreCodeRequiresRecordedPass(t *testing.T) {
	exam, _, _, code := buildExam()

	cases := []struct {
		name string
		ans  *model.CodeAnswer
		want float64
	}{
		{"never run", &model.CodeAnswer{Source: "x"}, 0},
		{"ran and failed", &model.CodeAnswer{Source: "x", HasRun: true, LastPassed: false}, 0},
		{"ran and passed", &model.CodeAnswer{Source: "x", HasRun: true, LastPassed: true}, 20},
		{"no payload", nil, 0},
	}
	for _, c := range cases {
		answers := model.AnswerSet{
			code: {Kind: model.QuestionKindCode, Code: c.ans},
		}
		if res := Score(exam, answers); res.Total != c.want {
			t.Errorf("%s: total = %v, want %v", c.name, res.Total, c.want)
		}
	}
}

func TestScoreKindMismatchScoresZero(t *testing.T) {
	exam, mcq, _, _ := buildExam()

	answers := model.AnswerSet{
		mcq: {Kind: model.QuestionKindShortAnswer, Text: "String"},
	}
	if res := Score(exam, answers); res.Total != 0 {
		t.Errorf("total = %v, want 0", res.Total)
	}
}

func TestScoreDeterministic(t *testing.T) {
	exam, mcq, short, code := buildExam()
	answers := model.AnswerSet{
		mcq:   {Kind: model.QuestionKindMultipleChoice, SelectedIndex: intPtr(0)},
		short: {Kind: model.QuestionKindShortAnswer, Text: "final"},
		code:  {Kind: model.QuestionKindCode, Code: &model.CodeAnswer{Source: "x", HasRun: true, LastPassed: true}},
	}

	first := Score(exam, answers)
	for i := 0; i < 10; i++ {
		if got := Score(exam, answers); got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}
