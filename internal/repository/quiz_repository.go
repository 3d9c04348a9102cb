package repository

import (
	"context"
	"errors"
	"time"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuizRepository struct {
	Col *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{Col: db.Collection("quizzes")}
}

// FindByID returns (nil, nil) when no quiz exists, keeping driver errors out
// of the service layer.
func (r *QuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	_, err := r.Col.InsertOne(ctx, quiz)
	return err
}

func (r *QuizRepository) Update(ctx context.Context, id string, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

// Delete is a soft delete; the record stays behind existing submissions.
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now()}})
	return err
}

// ListVisible returns quizzes per the caller's visibility: published
// non-deleted ones, plus the given teacher's own unpublished quizzes when
// teacherID is set. Admins pass admin=true and see everything undeleted.
func (r *QuizRepository) ListVisible(ctx context.Context, courseID, teacherID string, admin bool) ([]models.Quiz, error) {
	filter := bson.M{"deleted": false}
	if !admin {
		if teacherID != "" {
			filter["$or"] = bson.A{
				bson.M{"published": true},
				bson.M{"teacher_id": teacherID},
			}
		} else {
			filter["published"] = true
		}
	}
	if courseID != "" {
		filter["course_id"] = courseID
	}

	cur, err := r.Col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var quizzes []models.Quiz
	if err := cur.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}
