// internal/app/store/jobs/jobstore.go
package jobstore

import (
	"context"
	"errors"

	"github.com/dalemusser/placementhub/internal/app/store/storeerr"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads job postings. Postings are written elsewhere in the portal.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("job_postings")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.JobPosting, error) {
	var j models.JobPosting
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.JobPosting{}, storeerr.ErrNotFound
		}
		return models.JobPosting{}, err
	}
	return j, nil
}

// GetMany loads postings by id. Ids without a posting are absent from the map.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.JobPosting, error) {
	out := make(map[primitive.ObjectID]models.JobPosting, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var j models.JobPosting
		if err := cur.Decode(&j); err != nil {
			return nil, err
		}
		out[j.ID] = j
	}
	return out, cur.Err()
}

// Create inserts a posting. Used by seeding and tests.
func (s *Store) Create(ctx context.Context, j models.JobPosting) (models.JobPosting, error) {
	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, j); err != nil {
		return models.JobPosting{}, err
	}
	return j, nil
}
