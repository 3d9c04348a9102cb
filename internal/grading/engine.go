// Package grading scores a submitted answer set against a quiz's question
// bank. Grade is pure: same inputs, same outcome, no side effects.
package grading

import (
	"strings"

	"assessment-service/internal/models"
)

// Policy is the slice of quiz configuration grading needs.
type Policy struct {
	NegativeMarking   bool
	NegativeMarkValue float64
	TotalMarks        float64
	PassingMarks      float64
}

// Outcome carries the graded answers and the aggregate score.
type Outcome struct {
	Answers       []models.Answer
	MarksObtained float64
	Percentage    float64
	Passed        bool
}

// Grade resolves each answer against its question and totals the awards.
// Answers referencing unknown question ids grade as incorrect with zero
// points; malformed entries degrade to zero credit rather than failing the
// submission.
func Grade(questions []models.Question, answers []models.Answer, policy Policy) Outcome {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	graded := make([]models.Answer, 0, len(answers))
	total := 0.0
	for _, ans := range answers {
		ans.IsCorrect = false
		ans.PointsAwarded = 0

		q, ok := byID[ans.QuestionID]
		if !ok {
			graded = append(graded, ans)
			continue
		}

		switch q.Type {
		case models.QuestionSingleChoice, models.QuestionTrueFalse:
			// Only the primary selection counts.
			if len(ans.SelectedOptions) == 0 {
				break
			}
			if correct := correctOptionID(q); correct != "" && ans.SelectedOptions[0] == correct {
				ans.IsCorrect = true
				ans.PointsAwarded = q.Points
			} else if policy.NegativeMarking {
				ans.PointsAwarded = -policy.NegativeMarkValue
			}
		case models.QuestionShortAnswer:
			if ans.TextAnswer == "" {
				break
			}
			if normalize(ans.TextAnswer) == normalize(q.CorrectAnswer) {
				ans.IsCorrect = true
				ans.PointsAwarded = q.Points
			}
		case models.QuestionDescriptive:
			// Manual review happens elsewhere; zero points here.
		}

		total += ans.PointsAwarded
		graded = append(graded, ans)
	}

	// Clamped to zero after penalties; deliberately not capped at TotalMarks.
	if total < 0 {
		total = 0
	}

	percentage := 0.0
	if policy.TotalMarks > 0 {
		percentage = total / policy.TotalMarks * 100
	}

	return Outcome{
		Answers:       graded,
		MarksObtained: total,
		Percentage:    percentage,
		Passed:        total >= policy.PassingMarks,
	}
}

func correctOptionID(q models.Question) string {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID
		}
	}
	return ""
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
