package models

import "time"

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
	StatusEvaluated  = "evaluated"
)

// Submission is the mutable attempt record and the unit of concurrency
// control. It is created on start, mutated by proctoring events and submit,
// optionally reopened by a teacher resume, and never physically deleted.
type Submission struct {
	ID            string `bson:"_id,omitempty" json:"id"`
	QuizID        string `bson:"quiz_id" json:"quiz_id"`
	StudentID     string `bson:"student_id" json:"student_id"`
	CourseID      string `bson:"course_id" json:"course_id"`
	AttemptNumber int    `bson:"attempt_number" json:"attempt_number"`
	Status        string `bson:"status" json:"status"`

	// Redacted question set as shown to the student, fixed at start time.
	Questions []StudentQuestion `bson:"questions" json:"questions"`
	Answers   []Answer          `bson:"answers" json:"answers"`

	StartedAt        time.Time  `bson:"started_at" json:"started_at"`
	SubmittedAt      *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	TimeLimitMinutes int        `bson:"time_limit_minutes" json:"time_limit_minutes"`
	TimeTakenMinutes int        `bson:"time_taken_minutes" json:"time_taken_minutes"`

	MarksObtained float64 `bson:"marks_obtained" json:"marks_obtained"`
	TotalMarks    float64 `bson:"total_marks" json:"total_marks"`
	Percentage    float64 `bson:"percentage" json:"percentage"`
	Passed        bool    `bson:"passed" json:"passed"`

	TabSwitchCount      int      `bson:"tab_switch_count" json:"tab_switch_count"`
	FullscreenExitCount int      `bson:"fullscreen_exit_count" json:"fullscreen_exit_count"`
	SuspiciousActivity  []string `bson:"suspicious_activity" json:"suspicious_activity"`

	ResumedBy    string     `bson:"resumed_by,omitempty" json:"resumed_by,omitempty"`
	ResumedAt    *time.Time `bson:"resumed_at,omitempty" json:"resumed_at,omitempty"`
	ResumeReason string     `bson:"resume_reason,omitempty" json:"resume_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Answer holds one response; correctness and points stay zero-valued until
// grading.
type Answer struct {
	QuestionID      string   `bson:"question_id" json:"question_id"`
	SelectedOptions []string `bson:"selected_options,omitempty" json:"selected_options,omitempty"`
	TextAnswer      string   `bson:"text_answer,omitempty" json:"text_answer,omitempty"`
	IsCorrect       bool     `bson:"is_correct" json:"is_correct"`
	PointsAwarded   float64  `bson:"points_awarded" json:"points_awarded"`
}

// ProctoringSummary carries the client-reported counters handed over at
// submit time. Trusted input; merged with, never overwriting, counters
// recorded during the attempt.
type ProctoringSummary struct {
	TabSwitches     int  `json:"tab_switches"`
	FullscreenExits int  `json:"fullscreen_exits"`
	TimedOut        bool `json:"timed_out"`
}

const (
	EventTabSwitch      = "tab_switch"
	EventFullscreenExit = "fullscreen_exit"
)

// SubmitRecord is everything a successful submit writes in one atomic update.
type SubmitRecord struct {
	Answers            []Answer
	MarksObtained      float64
	Percentage         float64
	Passed             bool
	TabSwitches        int
	FullscreenExits    int
	SuspiciousActivity []string
	TimeTakenMinutes   int
	SubmittedAt        time.Time
	Status             string
}

// AttemptListOpts filters submission listings; zero values mean "any".
type AttemptListOpts struct {
	QuizID    string
	StudentID string
	Status    string
	Limit     int64
	Offset    int64
}

// ResumeRecord is the audit payload a teacher-initiated resume writes.
type ResumeRecord struct {
	By            string
	At            time.Time
	Reason        string
	Note          string
	ExtendMinutes int
}
