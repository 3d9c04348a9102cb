package repository

import (
	"context"
	"errors"
	"time"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubmissionRepository is the attempt store. Every lifecycle transition is a
// single conditional update against one document, so the store's per-document
// atomicity is the only consistency primitive the controller relies on.
type SubmissionRepository struct {
	Col *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{Col: db.Collection("submissions")}
}

// EnsureIndexes installs the uniqueness constraints the attempt lifecycle
// depends on: at most one in-progress submission per (quiz, student), and a
// deterministic identity on (quiz, student, attempt number) so concurrent
// duplicate starts collide instead of double-creating.
func (r *SubmissionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "quiz_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.StatusInProgress}),
		},
		{
			Keys: bson.D{
				{Key: "quiz_id", Value: 1},
				{Key: "student_id", Value: 1},
				{Key: "attempt_number", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "started_at", Value: -1}},
		},
	})
	return err
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepository) FindInProgress(ctx context.Context, quizID, studentID string) (*models.Submission, error) {
	var sub models.Submission
	err := r.Col.FindOne(ctx, bson.M{
		"quiz_id":    quizID,
		"student_id": studentID,
		"status":     models.StatusInProgress,
	}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepository) CountForStudent(ctx context.Context, quizID, studentID string) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"quiz_id": quizID, "student_id": studentID})
}

// CreateInProgress inserts a new in-progress submission. When a concurrent
// start already created one, the unique index rejects the insert and the
// existing record is returned instead, so both racers end up holding the same
// submission id. The bool reports whether this call did the insert.
func (r *SubmissionRepository) CreateInProgress(ctx context.Context, sub *models.Submission) (*models.Submission, bool, error) {
	if sub.ID == "" {
		sub.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	_, err := r.Col.InsertOne(ctx, sub)
	if mongo.IsDuplicateKeyError(err) {
		existing, ferr := r.FindInProgress(ctx, sub.QuizID, sub.StudentID)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing != nil {
			return existing, false, nil
		}
		// The competing attempt finished between our insert and the re-read;
		// surface the conflict and let the caller retry.
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// IncrementCounter bumps the counter for an event kind on an in-progress
// submission. A non-in-progress (or absent) submission matches nothing and
// the event is dropped, which is the intended treatment of stale signals.
func (r *SubmissionRepository) IncrementCounter(ctx context.Context, id, kind string) (bool, error) {
	var field string
	switch kind {
	case models.EventTabSwitch:
		field = "tab_switch_count"
	case models.EventFullscreenExit:
		field = "fullscreen_exit_count"
	default:
		return false, errors.New("unknown proctoring event kind: " + kind)
	}
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusInProgress},
		bson.M{
			"$inc": bson.M{field: 1},
			"$set": bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// FinalizeSubmit writes the graded result in one conditional update. The
// status filter makes the in_progress -> submitted transition atomic: a lost
// race (or an already-submitted record) matches nothing and returns nil.
// Proctoring counters merge via $max so client-reported totals never clobber
// higher counts recorded during the attempt.
func (r *SubmissionRepository) FinalizeSubmit(ctx context.Context, id string, rec models.SubmitRecord) (*models.Submission, error) {
	update := bson.M{
		"$set": bson.M{
			"answers":             rec.Answers,
			"status":              rec.Status,
			"marks_obtained":      rec.MarksObtained,
			"percentage":          rec.Percentage,
			"passed":              rec.Passed,
			"suspicious_activity": rec.SuspiciousActivity,
			"time_taken_minutes":  rec.TimeTakenMinutes,
			"submitted_at":        rec.SubmittedAt,
			"updated_at":          rec.SubmittedAt,
		},
		"$max": bson.M{
			"tab_switch_count":      rec.TabSwitches,
			"fullscreen_exit_count": rec.FullscreenExits,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var sub models.Submission
	err := r.Col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.StatusInProgress},
		update, opts).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Reopen moves a submission back to in-progress on teacher/admin authority,
// recording who, when and why, and appending the audit note. Permitted from
// any status; the optional extension adds minutes to the time limit.
func (r *SubmissionRepository) Reopen(ctx context.Context, id string, rec models.ResumeRecord) (*models.Submission, error) {
	update := bson.M{
		"$set": bson.M{
			"status":        models.StatusInProgress,
			"resumed_by":    rec.By,
			"resumed_at":    rec.At,
			"resume_reason": rec.Reason,
			"updated_at":    rec.At,
		},
		"$unset": bson.M{"submitted_at": ""},
		"$push":  bson.M{"suspicious_activity": rec.Note},
	}
	if rec.ExtendMinutes > 0 {
		update["$inc"] = bson.M{"time_limit_minutes": rec.ExtendMinutes}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var sub models.Submission
	err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// List returns submissions newest-started first.
func (r *SubmissionRepository) List(ctx context.Context, opts models.AttemptListOpts) ([]models.Submission, error) {
	filter := bson.M{}
	if opts.QuizID != "" {
		filter["quiz_id"] = opts.QuizID
	}
	if opts.StudentID != "" {
		filter["student_id"] = opts.StudentID
	}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(opts.Offset)
	}

	cur, err := r.Col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
