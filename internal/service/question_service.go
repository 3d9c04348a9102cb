package service

import (
	"context"
	"fmt"

	"assessment-service/internal/models"
	"assessment-service/internal/policy"
	"assessment-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

var questionUpdatableFields = map[string]struct{}{
	"text":           {},
	"options":        {},
	"correct_answer": {},
	"points":         {},
	"order":          {},
}

type QuestionService struct {
	Quizzes   *repository.QuizRepository
	Questions *repository.QuestionRepository
}

func NewQuestionService(quizzes *repository.QuizRepository, questions *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Quizzes: quizzes, Questions: questions}
}

func (s *QuestionService) AddQuestion(ctx context.Context, question *models.Question, actor policy.Actor) error {
	quiz, err := s.Quizzes.FindByID(ctx, question.QuizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		return ErrNotFound
	}
	if !policy.CanManageQuiz(quiz, actor) {
		return ErrForbidden
	}
	if err := validateQuestion(question); err != nil {
		return err
	}
	if question.Order == 0 {
		next, err := s.Questions.NextOrder(ctx, question.QuizID)
		if err != nil {
			return err
		}
		question.Order = next
	}
	return s.Questions.Create(ctx, question)
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id string, update map[string]interface{}, actor policy.Actor) error {
	quiz, err := s.ownerQuiz(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanManageQuiz(quiz, actor) {
		return ErrForbidden
	}
	filtered := bson.M{}
	for k, v := range update {
		if _, ok := questionUpdatableFields[k]; ok {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return fmt.Errorf("%w: no updatable fields in request", ErrValidation)
	}
	return s.Questions.Update(ctx, id, filtered)
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id string, actor policy.Actor) error {
	quiz, err := s.ownerQuiz(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanManageQuiz(quiz, actor) {
		return ErrForbidden
	}
	return s.Questions.Delete(ctx, id)
}

func (s *QuestionService) ownerQuiz(ctx context.Context, questionID string) (*models.Quiz, error) {
	question, err := s.Questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, ErrNotFound
	}
	quiz, err := s.Quizzes.FindByID(ctx, question.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrNotFound
	}
	return quiz, nil
}

func validateQuestion(q *models.Question) error {
	switch q.Type {
	case models.QuestionSingleChoice, models.QuestionTrueFalse:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: choice questions need at least two options", ErrValidation)
		}
		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: choice questions need exactly one correct option", ErrValidation)
		}
	case models.QuestionShortAnswer:
		if q.CorrectAnswer == "" {
			return fmt.Errorf("%w: short answer questions need a canonical answer", ErrValidation)
		}
	case models.QuestionDescriptive:
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrValidation, q.Type)
	}
	if q.Points <= 0 {
		return fmt.Errorf("%w: points must be positive", ErrValidation)
	}
	return nil
}
