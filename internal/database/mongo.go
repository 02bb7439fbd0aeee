package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"exercises/internal/config"
)

// namespaceExistsCode is the server error returned when creating a collection that already exists.
const namespaceExistsCode = 48

var (
	mongoConnect = mongo.Connect
	mongoPing    = func(ctx context.Context, c *mongo.Client) error {
		return c.Ping(ctx, readpref.Primary())
	}
)

// NewMongo connects to MongoDB, applies pool settings and verifies the deployment is reachable.
// The returned client is safe for concurrent use and should be disconnected on shutdown.
func NewMongo(c config.MongoConfig) (*mongo.Client, error) {
	if c.URI == "" || c.Database == "" || c.Collection == "" {
		return nil, fmt.Errorf("invalid mongo config: uri, database, and collection are required")
	}

	timeout := time.Duration(c.ConnectTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(c.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if c.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(c.MaxPoolSize))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongoConnect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := mongoPing(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}

// exerciseSchema is the $jsonSchema enforced by the server on every write.
var exerciseSchema = bson.M{
	"bsonType": "object",
	"required": bson.A{"name", "reps", "weight", "unit", "date"},
	"properties": bson.M{
		"name":   bson.M{"bsonType": "string", "minLength": 1},
		"reps":   bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0, "maximum": math.MaxInt32},
		"weight": bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "minimum": 0},
		"unit":   bson.M{"bsonType": "string", "minLength": 1},
		"date":   bson.M{"bsonType": "string", "minLength": 1},
	},
}

// EnsureMongoSchema creates the exercises collection with its schema validator.
// An existing collection is left untouched.
func EnsureMongoSchema(ctx context.Context, db *mongo.Database, collection string, log zerolog.Logger) error {
	start := time.Now()
	log = log.With().
		Str("component", "database").
		Str("db_name", db.Name()).
		Str("collection", collection).
		Logger()

	opts := options.CreateCollection().
		SetValidator(bson.M{"$jsonSchema": exerciseSchema}).
		SetValidationLevel("strict").
		SetValidationAction("error")

	err := db.CreateCollection(ctx, collection, opts)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == namespaceExistsCode {
			log.Info().
				Str("event", "db_schema_skip").
				Str("status", "success").
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("collection already exists, skipping schema setup")
			return nil
		}
		log.Error().
			Str("event", "db_schema_failed").
			Str("status", "error").
			Str("error_message", err.Error()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Send()
		return fmt.Errorf("create collection %s: %w", collection, err)
	}

	log.Info().
		Str("event", "db_schema_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Send()
	return nil
}
