// internal/app/store/applications/applicationstore.go
package applicationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists job applications. The unique (student_id, job_id) index
// created by indexes.EnsureAll is what makes Create race-safe.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("job_applications")}
}

// Create inserts a new application in the applied state. A second
// application for the same student and job returns storeerr.ErrDuplicate.
func (s *Store) Create(ctx context.Context, a models.JobApplication) (models.JobApplication, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.Status = models.StatusApplied
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.JobApplication{}, storeerr.ErrDuplicate
		}
		return models.JobApplication{}, err
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.JobApplication, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// Get returns the application a student holds for a job.
func (s *Store) Get(ctx context.Context, studentID string, jobID primitive.ObjectID) (models.JobApplication, error) {
	return s.findOne(ctx, bson.M{"student_id": studentID, "job_id": jobID})
}

// DeleteApplied removes the student's application for jobID only while it
// is still in the applied state. deleted is false when nothing matched.
func (s *Store) DeleteApplied(ctx context.Context, studentID string, jobID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"student_id": studentID,
		"job_id":     jobID,
		"status":     models.StatusApplied,
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// ListByStudent returns a student's applications, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID string) ([]models.JobApplication, error) {
	return s.find(ctx, bson.M{"student_id": studentID})
}

// ListByStudentStatus narrows ListByStudent to one status.
func (s *Store) ListByStudentStatus(ctx context.Context, studentID string, status models.ApplicationStatus) ([]models.JobApplication, error) {
	return s.find(ctx, bson.M{"student_id": studentID, "status": status})
}

// ListByJob returns every application for a posting, newest first.
func (s *Store) ListByJob(ctx context.Context, jobID primitive.ObjectID) ([]models.JobApplication, error) {
	return s.find(ctx, bson.M{"job_id": jobID})
}

// UpdateStatus moves an application from one status to another in a single
// compare-and-set. storeerr.ErrNotFound means either the id is unknown or
// the status was no longer from.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.ApplicationStatus) (models.JobApplication, error) {
	var a models.JobApplication
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.JobApplication{}, storeerr.ErrNotFound
		}
		return models.JobApplication{}, err
	}
	return a, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.JobApplication, error) {
	var a models.JobApplication
	if err := s.c.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.JobApplication{}, storeerr.ErrNotFound
		}
		return models.JobApplication{}, err
	}
	return a, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.JobApplication, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.JobApplication{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
