package migrations

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NameKeyIndex is the unique index that makes name the record identity.
const NameKeyIndex = "name_key_unique"

func createCollectionIfNotExists(ctx context.Context, db *mongo.Database, name string) error {
	if err := db.CreateCollection(ctx, name); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == 48 { // 48 = NamespaceExists
			return nil
		}
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// CreateCountryIndexes creates the country collection with a unique index on
// the lower-cased name plus the filter and status indexes.
func CreateCountryIndexes(collection string) func(ctx context.Context, db *mongo.Database) error {
	return func(ctx context.Context, db *mongo.Database) error {
		if err := createCollectionIfNotExists(ctx, db, collection); err != nil {
			return err
		}

		indexes := []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "name_key", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(NameKeyIndex),
			},
			{Keys: bson.D{{Key: "region", Value: 1}}},
			{Keys: bson.D{{Key: "currency_code", Value: 1}}},
			{Keys: bson.D{{Key: "last_refreshed_at", Value: -1}}},
		}

		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		return nil
	}
}
