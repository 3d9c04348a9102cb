package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"assessment-service/internal/grading"
	"assessment-service/internal/models"
	"assessment-service/internal/policy"
)

// QuizStore, QuestionStore and SubmissionStore are the slices of the
// persistence layer the attempt lifecycle needs. The mongo repositories
// satisfy them; tests use in-memory fakes.
type QuizStore interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
}

type QuestionStore interface {
	FindByQuizID(ctx context.Context, quizID string) ([]models.Question, error)
}

type SubmissionStore interface {
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindInProgress(ctx context.Context, quizID, studentID string) (*models.Submission, error)
	CountForStudent(ctx context.Context, quizID, studentID string) (int64, error)
	CreateInProgress(ctx context.Context, sub *models.Submission) (*models.Submission, bool, error)
	IncrementCounter(ctx context.Context, id, kind string) (bool, error)
	FinalizeSubmit(ctx context.Context, id string, rec models.SubmitRecord) (*models.Submission, error)
	Reopen(ctx context.Context, id string, rec models.ResumeRecord) (*models.Submission, error)
	List(ctx context.Context, opts models.AttemptListOpts) ([]models.Submission, error)
}

// Locker narrows the duplicate-start window. Best effort only: the store's
// unique index is what actually enforces the single in-progress invariant.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(), ok bool)
}

// AttemptService is the attempt lifecycle controller: start, proctoring
// events, supervised resume, and graded submit.
type AttemptService struct {
	Quizzes     QuizStore
	Questions   QuestionStore
	Submissions SubmissionStore
	Locker      Locker

	shuffle func(n int, swap func(i, j int))
	now     func() time.Time
}

func NewAttemptService(quizzes QuizStore, questions QuestionStore, submissions SubmissionStore, locker Locker) *AttemptService {
	return &AttemptService{
		Quizzes:     quizzes,
		Questions:   questions,
		Submissions: submissions,
		Locker:      locker,
		shuffle:     rand.Shuffle,
		now:         time.Now,
	}
}

// Start opens a new attempt, or hands back the existing in-progress one
// unchanged (reload after a crash or a double-click is not an error). The
// returned bool reports whether an existing attempt was resumed.
func (s *AttemptService) Start(ctx context.Context, quizID, studentID string) (*models.Submission, bool, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, false, err
	}
	if quiz == nil {
		return nil, false, ErrNotFound
	}
	now := s.now()
	switch {
	case quiz.Deleted:
		return nil, false, fmt.Errorf("%w: quiz deleted", ErrQuizUnavailable)
	case !quiz.Published:
		return nil, false, fmt.Errorf("%w: quiz not published", ErrQuizUnavailable)
	case quiz.Deadline != nil && now.After(*quiz.Deadline):
		return nil, false, fmt.Errorf("%w: deadline passed", ErrQuizUnavailable)
	}

	if s.Locker != nil {
		if release, ok := s.Locker.TryLock(ctx, "attempt:"+quizID+":"+studentID); ok {
			defer release()
		}
	}

	existing, err := s.Submissions.FindInProgress(ctx, quizID, studentID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	count, err := s.Submissions.CountForStudent(ctx, quizID, studentID)
	if err != nil {
		return nil, false, err
	}
	attemptNumber := int(count) + 1
	if quiz.MaxAttempts > 0 && attemptNumber > quiz.MaxAttempts {
		return nil, false, ErrAttemptLimitExceeded
	}

	questions, err := s.Questions.FindByQuizID(ctx, quizID)
	if err != nil {
		return nil, false, err
	}
	if len(questions) == 0 {
		return nil, false, fmt.Errorf("%w: quiz has no questions", ErrQuizUnavailable)
	}

	sub := &models.Submission{
		QuizID:             quizID,
		StudentID:          studentID,
		CourseID:           quiz.CourseID,
		AttemptNumber:      attemptNumber,
		Status:             models.StatusInProgress,
		Questions:          s.buildSnapshot(questions, quiz),
		Answers:            []models.Answer{},
		StartedAt:          now,
		TimeLimitMinutes:   quiz.DurationMinutes,
		TotalMarks:         quiz.TotalMarks,
		SuspiciousActivity: []string{},
	}

	created, didCreate, err := s.Submissions.CreateInProgress(ctx, sub)
	if err != nil {
		return nil, false, err
	}
	return created, !didCreate, nil
}

// buildSnapshot fixes the question set as shown to this student: redacted,
// display-ordered, shuffled per quiz policy. The snapshot never changes after
// this point, whatever happens to the question bank.
func (s *AttemptService) buildSnapshot(questions []models.Question, quiz *models.Quiz) []models.StudentQuestion {
	snapshot := models.RedactQuestions(questions)
	if quiz.ShuffleQuestions {
		s.shuffle(len(snapshot), func(i, j int) {
			snapshot[i], snapshot[j] = snapshot[j], snapshot[i]
		})
	}
	if quiz.ShuffleOptions {
		for i := range snapshot {
			opts := snapshot[i].Options
			s.shuffle(len(opts), func(a, b int) {
				opts[a], opts[b] = opts[b], opts[a]
			})
		}
	}
	return snapshot
}

// RecordEvent bumps a proctoring counter. Events against a submission that is
// no longer in progress are stale, not erroneous, and are dropped silently.
func (s *AttemptService) RecordEvent(ctx context.Context, submissionID, kind string) error {
	if kind != models.EventTabSwitch && kind != models.EventFullscreenExit {
		return fmt.Errorf("%w: unknown event kind %q", ErrValidation, kind)
	}
	_, err := s.Submissions.IncrementCounter(ctx, submissionID, kind)
	return err
}

// Submit grades the attempt and finalizes it in one atomic store update.
func (s *AttemptService) Submit(ctx context.Context, submissionID, studentID string, answers []models.Answer, proc models.ProctoringSummary) (*models.Submission, bool, error) {
	sub, err := s.Submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, false, err
	}
	if sub == nil {
		return nil, false, ErrNotFound
	}
	if !policy.CanSubmit(sub, policy.Actor{ID: studentID, Role: policy.RoleStudent}) {
		return nil, false, ErrForbidden
	}
	if sub.Status != models.StatusInProgress {
		return nil, false, fmt.Errorf("%w: already submitted", ErrInvalidState)
	}

	quiz, err := s.Quizzes.FindByID(ctx, sub.QuizID)
	if err != nil {
		return nil, false, err
	}
	if quiz == nil {
		return nil, false, ErrNotFound
	}

	now := s.now()
	elapsed := now.Sub(sub.StartedAt)
	timedOut := proc.TimedOut
	if sub.TimeLimitMinutes > 0 && elapsed > time.Duration(sub.TimeLimitMinutes)*time.Minute {
		timedOut = true
	}

	bank, err := s.snapshotBank(ctx, sub)
	if err != nil {
		return nil, false, err
	}

	outcome := grading.Grade(bank, answers, grading.Policy{
		NegativeMarking:   quiz.NegativeMarking,
		NegativeMarkValue: quiz.NegativeMarkValue,
		TotalMarks:        quiz.TotalMarks,
		PassingMarks:      quiz.PassingMarks,
	})

	// Counters recorded during the attempt merge with the client-reported
	// totals; both sides count the same events, so take the larger.
	tabSwitches := max(sub.TabSwitchCount, proc.TabSwitches)
	fullscreenExits := max(sub.FullscreenExitCount, proc.FullscreenExits)

	flags := append([]string{}, sub.SuspiciousActivity...)
	if quiz.MaxTabSwitches > 0 && tabSwitches > quiz.MaxTabSwitches {
		flags = append(flags, "Excessive tab switching detected")
	}
	if quiz.RequireFullscreen && fullscreenExits > 0 {
		flags = append(flags, "Exited fullscreen mode")
	}
	if timedOut {
		flags = append(flags, "Time limit exceeded")
	}

	status := models.StatusEvaluated
	if hasDescriptive(sub.Questions) {
		// Manual review pending; grading of the auto-gradable part is done.
		status = models.StatusSubmitted
	}

	updated, err := s.Submissions.FinalizeSubmit(ctx, submissionID, models.SubmitRecord{
		Answers:            outcome.Answers,
		MarksObtained:      outcome.MarksObtained,
		Percentage:         outcome.Percentage,
		Passed:             outcome.Passed,
		TabSwitches:        proc.TabSwitches,
		FullscreenExits:    proc.FullscreenExits,
		SuspiciousActivity: flags,
		TimeTakenMinutes:   int(elapsed.Minutes()),
		SubmittedAt:        now,
		Status:             status,
	})
	if err != nil {
		return nil, false, err
	}
	if updated == nil {
		// Lost the race against another finalizer.
		return nil, false, fmt.Errorf("%w: already submitted", ErrInvalidState)
	}
	return updated, quiz.ShowResultsAfterSubmit, nil
}

// snapshotBank loads the full question bank restricted to the questions the
// student was actually shown, so grading honors the start-time snapshot while
// still seeing the answer keys the snapshot deliberately lacks.
func (s *AttemptService) snapshotBank(ctx context.Context, sub *models.Submission) ([]models.Question, error) {
	questions, err := s.Questions.FindByQuizID(ctx, sub.QuizID)
	if err != nil {
		return nil, err
	}
	shown := make(map[string]struct{}, len(sub.Questions))
	for _, q := range sub.Questions {
		shown[q.ID] = struct{}{}
	}
	bank := make([]models.Question, 0, len(sub.Questions))
	for _, q := range questions {
		if _, ok := shown[q.ID]; ok {
			bank = append(bank, q)
		}
	}
	return bank, nil
}

func hasDescriptive(questions []models.StudentQuestion) bool {
	for _, q := range questions {
		if q.Type == models.QuestionDescriptive {
			return true
		}
	}
	return false
}

// Resume reopens a submission on teacher or admin authority. Permitted from
// any status: resuming an already-submitted attempt is an intentional
// override, and every resume leaves an audit note behind.
func (s *AttemptService) Resume(ctx context.Context, submissionID string, actor policy.Actor, reason string, extendMinutes int) (*models.Submission, error) {
	sub, err := s.Submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	quiz, err := s.Quizzes.FindByID(ctx, sub.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrNotFound
	}
	if !policy.CanResume(quiz, actor) {
		return nil, ErrForbidden
	}
	if !actor.IsAdmin() && !quiz.AllowTeacherResume {
		return nil, fmt.Errorf("%w: quiz does not allow teacher resume", ErrInvalidState)
	}
	if extendMinutes > 0 && !quiz.AllowTeacherExtendTime {
		return nil, fmt.Errorf("%w: quiz does not allow time extension", ErrInvalidState)
	}

	now := s.now()
	note := fmt.Sprintf("Attempt reopened by %s %s: %s", actor.Role, actor.ID, reason)
	updated, err := s.Submissions.Reopen(ctx, submissionID, models.ResumeRecord{
		By:            actor.ID,
		At:            now,
		Reason:        reason,
		Note:          note,
		ExtendMinutes: extendMinutes,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// Get returns a submission to its student, the quiz's teacher, or an admin.
func (s *AttemptService) Get(ctx context.Context, submissionID string, actor policy.Actor) (*models.Submission, error) {
	sub, err := s.Submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	quiz, err := s.Quizzes.FindByID(ctx, sub.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrNotFound
	}
	if !policy.CanViewSubmission(sub, quiz, actor) {
		return nil, ErrForbidden
	}
	return sub, nil
}

// List returns attempts visible to the actor: students see their own,
// teachers see attempts on quizzes they own, admins see anything.
func (s *AttemptService) List(ctx context.Context, actor policy.Actor, opts models.AttemptListOpts) ([]models.Submission, error) {
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		if opts.QuizID == "" {
			return nil, fmt.Errorf("%w: quiz id required", ErrValidation)
		}
		quiz, err := s.Quizzes.FindByID(ctx, opts.QuizID)
		if err != nil {
			return nil, err
		}
		if quiz == nil {
			return nil, ErrNotFound
		}
		if !policy.CanManageQuiz(quiz, actor) {
			return nil, ErrForbidden
		}
	default:
		opts.StudentID = actor.ID
	}
	return s.Submissions.List(ctx, opts)
}
