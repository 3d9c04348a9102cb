package service

import (
	"context"
	"fmt"

	"assessment-service/internal/models"
	"assessment-service/internal/policy"
	"assessment-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

// quizUpdatableFields is the whitelist for partial quiz updates; ownership
// and bookkeeping fields stay out of reach of the request body.
var quizUpdatableFields = map[string]struct{}{
	"title":                     {},
	"description":               {},
	"duration_minutes":          {},
	"total_marks":               {},
	"passing_marks":             {},
	"negative_marking":          {},
	"negative_mark_value":       {},
	"max_attempts":              {},
	"deadline":                  {},
	"shuffle_questions":         {},
	"shuffle_options":           {},
	"max_tab_switches":          {},
	"require_fullscreen":        {},
	"allow_teacher_resume":      {},
	"allow_teacher_extend_time": {},
	"show_results_after_submit": {},
	"published":                 {},
}

type QuizService struct {
	Quizzes   *repository.QuizRepository
	Questions *repository.QuestionRepository
}

func NewQuizService(quizzes *repository.QuizRepository, questions *repository.QuestionRepository) *QuizService {
	return &QuizService{Quizzes: quizzes, Questions: questions}
}

func (s *QuizService) CreateQuiz(ctx context.Context, quiz *models.Quiz, actor policy.Actor) error {
	if !actor.IsTeacher() && !actor.IsAdmin() {
		return ErrForbidden
	}
	if quiz.CourseID == "" || quiz.Title == "" {
		return fmt.Errorf("%w: course id and title are required", ErrValidation)
	}
	if quiz.TeacherID == "" || actor.IsTeacher() {
		quiz.TeacherID = actor.ID
	}
	quiz.Deleted = false
	return s.Quizzes.Create(ctx, quiz)
}

func (s *QuizService) GetQuiz(ctx context.Context, id string, actor policy.Actor) (*models.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrNotFound
	}
	if !policy.CanViewQuiz(quiz, actor) {
		return nil, ErrForbidden
	}
	return quiz, nil
}

func (s *QuizService) ListQuizzes(ctx context.Context, actor policy.Actor, courseID string) ([]models.Quiz, error) {
	teacherID := ""
	if actor.IsTeacher() {
		teacherID = actor.ID
	}
	return s.Quizzes.ListVisible(ctx, courseID, teacherID, actor.IsAdmin())
}

func (s *QuizService) UpdateQuiz(ctx context.Context, id string, update map[string]interface{}, actor policy.Actor) error {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if quiz == nil {
		return ErrNotFound
	}
	if !policy.CanManageQuiz(quiz, actor) {
		return ErrForbidden
	}
	filtered := bson.M{}
	for k, v := range update {
		if _, ok := quizUpdatableFields[k]; ok {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return fmt.Errorf("%w: no updatable fields in request", ErrValidation)
	}
	return s.Quizzes.Update(ctx, id, filtered)
}

func (s *QuizService) DeleteQuiz(ctx context.Context, id string, actor policy.Actor) error {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if quiz == nil {
		return ErrNotFound
	}
	if !policy.CanManageQuiz(quiz, actor) {
		return ErrForbidden
	}
	return s.Quizzes.Delete(ctx, id)
}

// QuestionBank returns the quiz's questions in display order together with
// whether the actor is privileged to see answer keys. Unprivileged callers
// must only ever receive the redacted projection of the returned set.
func (s *QuizService) QuestionBank(ctx context.Context, quizID string, actor policy.Actor) ([]models.Question, bool, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, false, err
	}
	if quiz == nil {
		return nil, false, ErrNotFound
	}
	if !policy.CanViewQuiz(quiz, actor) {
		return nil, false, ErrForbidden
	}
	questions, err := s.Questions.FindByQuizID(ctx, quizID)
	if err != nil {
		return nil, false, err
	}
	return questions, policy.CanManageQuiz(quiz, actor), nil
}
