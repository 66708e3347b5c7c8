package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection is the name of the users collection.
const Collection = "users"

// Connect dials uri and pings the primary, both within timeout. The
// returned client is disconnected again on failure.
func Connect(ctx context.Context, uri string, timeout time.Duration, log *zap.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.Info("connected to mongo")
	return client, nil
}

// EnsureCollection creates the users collection when it is missing.
func EnsureCollection(ctx context.Context, db *mongo.Database) (*mongo.Collection, error) {
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: Collection}})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if len(names) == 0 {
		if err := db.CreateCollection(ctx, Collection); err != nil {
			return nil, fmt.Errorf("create collection %s: %w", Collection, err)
		}
	}
	return db.Collection(Collection), nil
}
