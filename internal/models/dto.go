package models

// StudentOption is an option with the correctness flag projected away. The
// authoritative Question record is never mutated to produce it.
type StudentOption struct {
	ID   string `bson:"id" json:"id"`
	Text string `bson:"text" json:"text"`
}

// StudentQuestion is the redacted view served to students and stored in the
// attempt snapshot: no correctness flags, no canonical answer.
type StudentQuestion struct {
	ID      string          `bson:"_id,omitempty" json:"id"`
	QuizID  string          `bson:"quiz_id" json:"quiz_id"`
	Type    string          `bson:"type" json:"type"`
	Text    string          `bson:"text" json:"text"`
	Options []StudentOption `bson:"options,omitempty" json:"options,omitempty"`
	Points  float64         `bson:"points" json:"points"`
	Order   int             `bson:"order" json:"order"`
}

// RedactQuestion builds the student view of a question.
func RedactQuestion(q Question) StudentQuestion {
	sq := StudentQuestion{
		ID:     q.ID,
		QuizID: q.QuizID,
		Type:   q.Type,
		Text:   q.Text,
		Points: q.Points,
		Order:  q.Order,
	}
	if len(q.Options) > 0 {
		sq.Options = make([]StudentOption, len(q.Options))
		for i, opt := range q.Options {
			sq.Options[i] = StudentOption{ID: opt.ID, Text: opt.Text}
		}
	}
	return sq
}

// RedactQuestions projects a whole question set.
func RedactQuestions(questions []Question) []StudentQuestion {
	out := make([]StudentQuestion, len(questions))
	for i, q := range questions {
		out[i] = RedactQuestion(q)
	}
	return out
}

// SubmissionSummary is the graded view returned when the quiz withholds
// per-answer results (show_results_after_submit off).
type SubmissionSummary struct {
	ID               string  `json:"id"`
	QuizID           string  `json:"quiz_id"`
	AttemptNumber    int     `json:"attempt_number"`
	Status           string  `json:"status"`
	MarksObtained    float64 `json:"marks_obtained"`
	TotalMarks       float64 `json:"total_marks"`
	Percentage       float64 `json:"percentage"`
	Passed           bool    `json:"passed"`
	TimeTakenMinutes int     `json:"time_taken_minutes"`
}

// Summarize projects a submission down to its aggregate results.
func (s *Submission) Summarize() SubmissionSummary {
	return SubmissionSummary{
		ID:               s.ID,
		QuizID:           s.QuizID,
		AttemptNumber:    s.AttemptNumber,
		Status:           s.Status,
		MarksObtained:    s.MarksObtained,
		TotalMarks:       s.TotalMarks,
		Percentage:       s.Percentage,
		Passed:           s.Passed,
		TimeTakenMinutes: s.TimeTakenMinutes,
	}
}
