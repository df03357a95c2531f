package health

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoPinger adapts a mongo client to Pinger, pinging the primary.
type MongoPinger struct {
	Client *mongo.Client
}

func (m MongoPinger) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}
