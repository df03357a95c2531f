package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateJob inserts a posting of the given kind. An empty kind leaves the
// posting unclassified.
func (f *Fixtures) CreateJob(ctx context.Context, title string, kind models.JobKind) models.JobPosting {
	f.t.Helper()

	deadline := time.Now().UTC().Add(14 * 24 * time.Hour)
	job := models.JobPosting{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: title + " description",
		Company:     "Test Co",
		Kind:        kind,
		Batch:       2026,
		Deadline:    &deadline,
	}
	if _, err := f.db.Collection("job_postings").InsertOne(ctx, job); err != nil {
		f.t.Fatalf("failed to create job %q: %v", title, err)
	}
	return job
}

// CreateApplication inserts an application directly, bypassing lifecycle
// checks, so tests can start from any status.
func (f *Fixtures) CreateApplication(ctx context.Context, studentID string, jobID primitive.ObjectID, status models.ApplicationStatus) models.JobApplication {
	f.t.Helper()

	now := time.Now().UTC()
	app := models.JobApplication{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		JobID:     jobID,
		Resume:    "https://example.com/resume.pdf",
		Phone:     "555-0100",
		Address:   "1 Campus Way",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("job_applications").InsertOne(ctx, app); err != nil {
		f.t.Fatalf("failed to create application: %v", err)
	}
	return app
}
