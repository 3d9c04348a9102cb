package grading

import (
	"testing"

	"assessment-service/internal/models"
)

func choiceQuestion(id string, points float64, correctOption string) models.Question {
	return models.Question{
		ID:     id,
		Type:   models.QuestionSingleChoice,
		Points: points,
		Options: []models.Option{
			{ID: "a", Text: "A", IsCorrect: correctOption == "a"},
			{ID: "b", Text: "B", IsCorrect: correctOption == "b"},
			{ID: "c", Text: "C", IsCorrect: correctOption == "c"},
		},
	}
}

func TestGradeSingleChoice(t *testing.T) {
	questions := []models.Question{
		choiceQuestion("q1", 5, "a"),
		choiceQuestion("q2", 5, "b"),
	}

	outcome := Grade(questions, []models.Answer{
		{QuestionID: "q1", SelectedOptions: []string{"a"}},
		{QuestionID: "q2", SelectedOptions: []string{"c"}},
	}, Policy{TotalMarks: 10, PassingMarks: 5})

	if !outcome.Answers[0].IsCorrect {
		t.Error("Expected q1 answer to be correct")
	}
	if outcome.Answers[1].IsCorrect {
		t.Error("Expected q2 answer to be incorrect")
	}
	if outcome.MarksObtained != 5 {
		t.Errorf("Expected 5 marks, got %.1f", outcome.MarksObtained)
	}
	if outcome.Percentage != 50 {
		t.Errorf("Expected 50%%, got %.1f", outcome.Percentage)
	}
	if !outcome.Passed {
		t.Error("Expected pass at exactly the passing mark")
	}
}

func TestGradeNegativeMarking(t *testing.T) {
	questions := []models.Question{
		choiceQuestion("q1", 5, "a"),
		choiceQuestion("q2", 5, "a"),
	}
	policy := Policy{NegativeMarking: true, NegativeMarkValue: 2, TotalMarks: 10, PassingMarks: 6}

	outcome := Grade(questions, []models.Answer{
		{QuestionID: "q1", SelectedOptions: []string{"a"}},
		{QuestionID: "q2", SelectedOptions: []string{"b"}},
	}, policy)

	if outcome.MarksObtained != 3 {
		t.Errorf("Expected 5 - 2 = 3 marks, got %.1f", outcome.MarksObtained)
	}
	if outcome.Answers[1].PointsAwarded != -2 {
		t.Errorf("Expected -2 points on the wrong answer, got %.1f", outcome.Answers[1].PointsAwarded)
	}
	if outcome.Passed {
		t.Error("Expected fail below passing marks")
	}

	// A skipped question carries no penalty.
	outcome = Grade(questions, []models.Answer{
		{QuestionID: "q1", SelectedOptions: []string{"a"}},
		{QuestionID: "q2"},
	}, policy)
	if outcome.MarksObtained != 5 {
		t.Errorf("Expected no penalty without a selection, got %.1f", outcome.MarksObtained)
	}
}

func TestGradeClampsAggregateAtZero(t *testing.T) {
	questions := []models.Question{
		choiceQuestion("q1", 2, "a"),
		choiceQuestion("q2", 2, "a"),
	}

	outcome := Grade(questions, []models.Answer{
		{QuestionID: "q1", SelectedOptions: []string{"b"}},
		{QuestionID: "q2", SelectedOptions: []string{"b"}},
	}, Policy{NegativeMarking: true, NegativeMarkValue: 3, TotalMarks: 4})

	if outcome.MarksObtained != 0 {
		t.Errorf("Expected aggregate clamped to 0, got %.1f", outcome.MarksObtained)
	}
	// Per-answer awards keep the raw penalty.
	if outcome.Answers[0].PointsAwarded != -3 {
		t.Errorf("Expected raw -3 per answer, got %.1f", outcome.Answers[0].PointsAwarded)
	}
}

func TestGradeShortAnswer(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.QuestionShortAnswer, Points: 4, CorrectAnswer: "Paris"},
	}

	cases := []struct {
		name    string
		text    string
		correct bool
	}{
		{"exact", "Paris", true},
		{"case and whitespace insensitive", "  paris ", true},
		{"wrong", "London", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := Grade(questions, []models.Answer{
				{QuestionID: "q1", TextAnswer: tc.text},
			}, Policy{TotalMarks: 4, PassingMarks: 4})
			if outcome.Answers[0].IsCorrect != tc.correct {
				t.Errorf("Expected correct=%v for %q", tc.correct, tc.text)
			}
		})
	}

	// Short answers never attract negative marking.
	outcome := Grade(questions, []models.Answer{
		{QuestionID: "q1", TextAnswer: "London"},
	}, Policy{NegativeMarking: true, NegativeMarkValue: 2, TotalMarks: 4})
	if outcome.Answers[0].PointsAwarded != 0 {
		t.Errorf("Expected 0 points for wrong short answer, got %.1f", outcome.Answers[0].PointsAwarded)
	}
}

func TestGradeDescriptiveAlwaysZero(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.QuestionDescriptive, Points: 10},
	}
	outcome := Grade(questions, []models.Answer{
		{QuestionID: "q1", TextAnswer: "a long essay"},
	}, Policy{TotalMarks: 10, PassingMarks: 0})
	if outcome.Answers[0].IsCorrect || outcome.Answers[0].PointsAwarded != 0 {
		t.Error("Expected descriptive answer to grade to zero pending review")
	}
}

func TestGradeUnknownQuestionID(t *testing.T) {
	questions := []models.Question{choiceQuestion("q1", 5, "a")}
	outcome := Grade(questions, []models.Answer{
		{QuestionID: "ghost", SelectedOptions: []string{"a"}},
	}, Policy{TotalMarks: 5})
	if len(outcome.Answers) != 1 {
		t.Fatalf("Expected the stray answer to be retained, got %d answers", len(outcome.Answers))
	}
	if outcome.Answers[0].IsCorrect || outcome.Answers[0].PointsAwarded != 0 {
		t.Error("Expected unknown question id to grade to zero")
	}
}

func TestGradeZeroTotalMarks(t *testing.T) {
	questions := []models.Question{choiceQuestion("q1", 5, "a")}
	outcome := Grade(questions, []models.Answer{
		{QuestionID: "q1", SelectedOptions: []string{"a"}},
	}, Policy{TotalMarks: 0, PassingMarks: 0})
	if outcome.Percentage != 0 {
		t.Errorf("Expected 0%% when total marks is 0, got %.1f", outcome.Percentage)
	}
	if !outcome.Passed {
		t.Error("Expected pass when passing marks is 0")
	}
}

func TestGradeQuestionWithNoCorrectOption(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.QuestionSingleChoice, Points: 5, Options: []models.Option{
			{ID: "a", Text: "A"},
			{ID: "b", Text: "B"},
		}},
	}
	outcome := Grade(questions, []models.Answer{
		{QuestionID: "q1", SelectedOptions: []string{"a"}},
	}, Policy{TotalMarks: 5})
	if outcome.Answers[0].IsCorrect {
		t.Error("Expected no credit when the question has no correct option")
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	questions := []models.Question{
		choiceQuestion("q1", 5, "a"),
		{ID: "q2", Type: models.QuestionShortAnswer, Points: 3, CorrectAnswer: "42"},
	}
	answers := []models.Answer{
		{QuestionID: "q1", SelectedOptions: []string{"a"}},
		{QuestionID: "q2", TextAnswer: "42"},
	}
	policy := Policy{TotalMarks: 8, PassingMarks: 5}

	first := Grade(questions, answers, policy)
	for i := 0; i < 10; i++ {
		again := Grade(questions, answers, policy)
		if again.MarksObtained != first.MarksObtained || again.Percentage != first.Percentage {
			t.Fatalf("Expected identical outcome on re-grade, got %.1f vs %.1f", again.MarksObtained, first.MarksObtained)
		}
	}
}
