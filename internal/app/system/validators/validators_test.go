package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/validators"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
			t.Fatalf("EnsureAll call %d failed: %v", i+1, err)
		}
	}
}

func TestApplicationsSchema_RejectsUnknownStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	coll := db.Collection("job_applications")
	good := bson.M{
		"student_id": "s-1",
		"job_id":     primitive.NewObjectID(),
		"status":     "applied",
		"created_at": time.Now().UTC(),
	}
	if _, err := coll.InsertOne(ctx, good); err != nil {
		t.Fatalf("valid application rejected: %v", err)
	}

	bad := bson.M{
		"student_id": "s-2",
		"job_id":     primitive.NewObjectID(),
		"status":     "withdrawn",
		"created_at": time.Now().UTC(),
	}
	if _, err := coll.InsertOne(ctx, bad); err == nil {
		t.Fatal("expected validator to reject a stored withdrawn status")
	}
}
