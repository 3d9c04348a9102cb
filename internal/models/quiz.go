package models

import "time"

// Quiz is the policy record an attempt runs under. Owned by its creating
// teacher; submissions reference it but never own it.
type Quiz struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	CourseID    string `bson:"course_id" json:"course_id"`
	TeacherID   string `bson:"teacher_id" json:"teacher_id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`

	DurationMinutes   int     `bson:"duration_minutes" json:"duration_minutes"`
	TotalMarks        float64 `bson:"total_marks" json:"total_marks"`
	PassingMarks      float64 `bson:"passing_marks" json:"passing_marks"`
	NegativeMarking   bool    `bson:"negative_marking" json:"negative_marking"`
	NegativeMarkValue float64 `bson:"negative_mark_value" json:"negative_mark_value"`

	// 0 means unlimited.
	MaxAttempts int        `bson:"max_attempts" json:"max_attempts"`
	Deadline    *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`

	ShuffleQuestions bool `bson:"shuffle_questions" json:"shuffle_questions"`
	ShuffleOptions   bool `bson:"shuffle_options" json:"shuffle_options"`

	MaxTabSwitches    int  `bson:"max_tab_switches" json:"max_tab_switches"`
	RequireFullscreen bool `bson:"require_fullscreen" json:"require_fullscreen"`

	AllowTeacherResume     bool `bson:"allow_teacher_resume" json:"allow_teacher_resume"`
	AllowTeacherExtendTime bool `bson:"allow_teacher_extend_time" json:"allow_teacher_extend_time"`
	ShowResultsAfterSubmit bool `bson:"show_results_after_submit" json:"show_results_after_submit"`

	Published bool `bson:"published" json:"published"`
	Deleted   bool `bson:"deleted" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

const (
	QuestionSingleChoice = "single_choice"
	QuestionTrueFalse    = "true_false"
	QuestionShortAnswer  = "short_answer"
	QuestionDescriptive  = "descriptive"
)

type Option struct {
	ID        string `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	IsCorrect bool   `bson:"is_correct" json:"is_correct"`
}

type Question struct {
	ID      string   `bson:"_id,omitempty" json:"id"`
	QuizID  string   `bson:"quiz_id" json:"quiz_id"`
	Type    string   `bson:"type" json:"type"`
	Text    string   `bson:"text" json:"text"`
	Options []Option `bson:"options,omitempty" json:"options,omitempty"`

	// Canonical answer for short_answer questions only.
	CorrectAnswer string  `bson:"correct_answer,omitempty" json:"correct_answer,omitempty"`
	Points        float64 `bson:"points" json:"points"`

	// Display order, unique per quiz.
	Order int `bson:"order" json:"order"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsChoiceType reports whether the question is auto-graded by option id.
func (q *Question) IsChoiceType() bool {
	return q.Type == QuestionSingleChoice || q.Type == QuestionTrueFalse
}
