package archive

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumenlab/lumen/pkg/errors"
)

const collectionName = "plans"

// MongoArchive stores records in a MongoDB collection, newest retrievable
// first via an index on created_at.
type MongoArchive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI      string
	Database string
}

// NewMongoArchive connects to MongoDB, verifies the connection, and
// ensures the created_at index used by List.
func NewMongoArchive(ctx context.Context, cfg MongoConfig) (*MongoArchive, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(collectionName)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create archive index: %w", err)
	}

	return &MongoArchive{client: client, coll: coll}, nil
}

func (a *MongoArchive) Insert(ctx context.Context, rec Record) error {
	if _, err := a.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert archive record: %w", err)
	}
	return nil
}

func (a *MongoArchive) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list archive records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode archive records: %w", err)
	}
	return records, nil
}

func (a *MongoArchive) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := a.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodePlanNotFound, "no archived plan with id %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get archive record: %w", err)
	}
	return &rec, nil
}

// Close disconnects from MongoDB.
func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

var _ Archive = (*MongoArchive)(nil)
