package infra

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shopfront/catalog_api/internal/product"
)

// NewMongoDatabase connects to MongoDB, verifies connectivity and returns the named
// database. Callers disconnect through db.Client().
func NewMongoDatabase(ctx context.Context, url, name string) (*mongo.Database, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo url is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client.Database(name), nil
}

// EnsureMongoIndexes creates the owner index used by every product query.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(product.ProductsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: product.OwnerField, Value: 1}, {Key: product.IDField, Value: 1}},
		Options: options.Index().SetName("owner_id"),
	})
	if err != nil {
		return fmt.Errorf("create products index: %w", err)
	}
	return nil
}
