// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the document collections if missing and attaches
// JSON-Schema validators. Servers that don't support collMod/validators
// (some DocumentDB versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isUnsupported(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
			return
		}
		logger.Debug("validator ensured", zap.String("collection", coll))
	}

	ensure("job_applications", applicationsSchema())
	ensure("job_postings", postingsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	logger.Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

func commandError(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandError(err, []int32{48}, "already exists", "namespace exists")
}

// NoSuchCommand (59) and NotImplemented (115).
func isUnsupported(err error) bool {
	return commandError(err, []int32{59, 115}, "no such command", "not implemented", "not supported")
}

func statusEnum() bson.A {
	// withdrawn is never stored; cancel deletes the document.
	return bson.A{
		string(models.StatusApplied),
		string(models.StatusUnderReview),
		string(models.StatusShortlisted),
		string(models.StatusRejected),
	}
}

func applicationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"student_id", "job_id", "status", "created_at"},
			"properties": bson.M{
				"student_id": bson.M{"bsonType": "string", "minLength": 1},
				"job_id":     bson.M{"bsonType": "objectId"},
				"resume":     bson.M{"bsonType": "string"},
				"phone":      bson.M{"bsonType": "string"},
				"address":    bson.M{"bsonType": "string"},
				"status":     bson.M{"enum": statusEnum()},
				"created_at": bson.M{"bsonType": "date"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func postingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"job_title", "company"},
			"properties": bson.M{
				"job_title": bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"company":   bson.M{"bsonType": "string", "minLength": 1},
				// kind may be absent on legacy postings; listings skip those.
				"kind": bson.M{"enum": bson.A{string(models.JobKindOnCampus), string(models.JobKindOffCampus)}},
			},
		},
	}
}
