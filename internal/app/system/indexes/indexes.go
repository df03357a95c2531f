// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called from the EnsureSchema hook. Each ensure* function is
idempotent. Errors are aggregated so every problem is visible and startup
can fail fast.

The relational tables are owned by cmd/migrate; only the document
collections are reconciled here.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	r := reconciler{log: logger}
	var problems []string

	if err := r.ensureJobApplications(ctx, db); err != nil {
		problems = append(problems, "job_applications: "+err.Error())
	}
	if err := r.ensureJobPostings(ctx, db); err != nil {
		problems = append(problems, "job_postings: "+err.Error())
	}
	if err := r.ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type reconciler struct {
	log *zap.Logger
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name or options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func (r reconciler) existing(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			r.log.Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

// ensureIndexSet reconciles the desired indexes for one collection. An
// index with the same keys and uniqueness is reused whatever its name; one
// whose uniqueness differs is dropped and recreated.
func (r reconciler) ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	var errs []string
	have := r.existing(ctx, coll)

	for _, m := range desired {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)),
		}

		if ex, ok := have[sig]; ok {
			if isUnique(ex.Unique) == isUnique(unique) {
				r.log.Debug("reusing existing index", append(fields, zap.String("existing", ex.Name))...)
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				r.log.Warn("drop existing index failed", append(fields, zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		switch {
		case err == nil:
			r.log.Info("index ensured", append(fields,
				zap.String("created_name", created),
				zap.String("took", time.Since(start).String()))...)
		case wafflemongo.IsDup(err):
			// Existing documents already violate the unique key; an operator
			// has to clean them up before the index can be built.
			r.log.Error("unique index blocked by duplicate documents", append(fields, zap.Error(err))...)
			errs = append(errs, fmt.Sprintf("%s(%s): duplicate documents block unique index", coll.Name(), name))
		case isOptionsConflictErr(err):
			r.log.Warn("index options conflict", append(fields, zap.Error(err))...)
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
		default:
			r.log.Warn("index ensure failed", append(fields, zap.Error(err))...)
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r reconciler) ensureJobApplications(ctx context.Context, db *mongo.Database) error {
	return r.ensureIndexSet(ctx, db.Collection("job_applications"), []mongo.IndexModel{
		{
			// At most one application per student and job.
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "job_id", Value: 1}},
			Options: options.Index().SetName("uniq_student_job").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_job_created"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_student_status"),
		},
	})
}

func (r reconciler) ensureJobPostings(ctx context.Context, db *mongo.Database) error {
	return r.ensureIndexSet(ctx, db.Collection("job_postings"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "deadline", Value: 1}},
			Options: options.Index().SetName("idx_kind_deadline"),
		},
	})
}

func (r reconciler) ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return r.ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_user_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_actor_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_category_type_timestamp"),
		},
	})
}
