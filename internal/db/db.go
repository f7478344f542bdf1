package db

import (
	"context"
	"fmt"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/internal/config"
	"github.com/AbdulWasayUl/go-country-currency/internal/db/migrations"
	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/AbdulWasayUl/go-country-currency/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.Mongo.ConnectionURI())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(ctxTimeout, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("Successfully connected to MongoDB!")
	return client, nil
}

func DisconnectMongoDB(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return err
	}
	logger.Info("Disconnected from MongoDB.")
	return nil
}

// Migrations lists the schema steps in application order.
func Migrations(cfg *config.Config) []models.Migration {
	return []models.Migration{
		{Name: "country_indexes_v1", Func: migrations.CreateCountryIndexes(cfg.Mongo.Collection)},
	}
}

// RunMigrations applies every migration not yet recorded in the history collection.
func RunMigrations(ctx context.Context, client *mongo.Client, cfg *config.Config) error {
	db := client.Database(cfg.Mongo.Database)
	coll := db.Collection(cfg.Mongo.MigrationsCollection)

	for _, m := range Migrations(cfg) {
		var result struct{ Name string }
		err := coll.FindOne(ctx, bson.M{"name": m.Name}).Decode(&result)
		if err == mongo.ErrNoDocuments {
			logger.Info("Running migration: %s", m.Name)
			if err := m.Func(ctx, db); err != nil {
				logger.Error("Error applying migration %s: %v", m.Name, err)
				return fmt.Errorf("migration %s: %w", m.Name, err)
			}
			_, err = coll.InsertOne(ctx, bson.M{"name": m.Name, "applied_at": time.Now()})
			if err != nil {
				return err
			}
			logger.Info("Migration %s applied successfully.", m.Name)
		} else if err != nil {
			return err
		} else {
			logger.Debug("Migration %s already applied, skipping.", m.Name)
		}
	}

	return nil
}
