// internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hearthline/commerce-api/internal/config"
	"github.com/hearthline/commerce-api/internal/repositories/mongodb"
)

// ConnectMongo opens the catalog document store client and verifies it with a ping.
func ConnectMongo(cfg config.MongoConfig) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo connection URI is empty")
	}

	clientOptions := options.Client().ApplyURI(cfg.URI).
		SetMaxPoolSize(uint64(cfg.MaxPoolSize)).
		SetMinPoolSize(uint64(cfg.MinPoolSize)).
		SetConnectTimeout(cfg.Timeout()).
		SetSocketTimeout(2 * cfg.Timeout())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelPing()

	if err := client.Ping(ctxPing, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logrus.Info("Successfully connected to MongoDB")
	return client, nil
}

// CloseMongo disconnects the client.
func CloseMongo(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		logrus.WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}
	logrus.Info("Successfully disconnected from MongoDB")
	return nil
}

// EnsureCatalogIndexes creates the unique business-key and name indexes.
func EnsureCatalogIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		mongodb.ProductsCollection: {
			{Keys: bson.D{{Key: "productNo", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		},
		mongodb.CategoriesCollection:    {{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		mongodb.SubcategoriesCollection: {{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		mongodb.TagsCollection:          {{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// PingMongo reports whether the primary of the catalog replica set answers.
func PingMongo(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}
