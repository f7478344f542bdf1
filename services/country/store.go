package country

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperr "github.com/AbdulWasayUl/go-country-currency/internal/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists country records keyed by case-insensitive name.
type Store interface {
	Upsert(ctx context.Context, rec Country) error
	Insert(ctx context.Context, rec Country) (*Country, error)
	List(ctx context.Context, filter Filter, sort SortKey) ([]Country, error)
	GetByName(ctx context.Context, name string) (*Country, error)
	DeleteByName(ctx context.Context, name string) error
	Count(ctx context.Context) (int64, error)
	MostRecentRefresh(ctx context.Context) (*time.Time, error)
}

// MongoStore relies on the unique name_key index created by the migrations.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{coll: db.Collection(collection)}
}

// Upsert overwrites every field of the record with the same name key, or
// inserts it. Two concurrent first inserts of a name can collide on the
// unique index; the loser retries once and then matches as an update.
func (s *MongoStore) Upsert(ctx context.Context, rec Country) error {
	filter := bson.M{"name_key": NameKey(rec.Name)}
	update := bson.M{"$set": rec.fields()}
	opts := options.Update().SetUpsert(true)

	_, err := s.coll.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		_, err = s.coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert country %q: %w", rec.Name, err)
	}
	return nil
}

// Insert creates a record and fails with a validation error if the name is taken.
func (s *MongoStore) Insert(ctx context.Context, rec Country) (*Country, error) {
	res, err := s.coll.InsertOne(ctx, rec.fields())
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperr.NewValidation(map[string]string{"name": "Country already exists"})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert country %q: %w", rec.Name, err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = id
	}
	rec.NameKey = NameKey(rec.Name)
	return &rec, nil
}

func (s *MongoStore) List(ctx context.Context, filter Filter, sort SortKey) ([]Country, error) {
	query := bson.M{}
	if filter.Region != "" {
		query["region"] = filter.Region
	}
	if filter.CurrencyCode != "" {
		query["currency_code"] = strings.ToUpper(filter.CurrencyCode)
	}

	cursor, err := s.coll.Find(ctx, query, options.Find().SetSort(sortSpec(sort)))
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer cursor.Close(ctx)

	results := []Country{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}
	return results, nil
}

// sortSpec breaks ties by name so listings are stable.
func sortSpec(sort SortKey) bson.D {
	byName := bson.E{Key: "name_key", Value: 1}
	switch sort {
	case SortGDPDesc:
		return bson.D{{Key: "estimated_gdp", Value: -1}, byName}
	case SortGDPAsc:
		return bson.D{{Key: "estimated_gdp", Value: 1}, byName}
	case SortPopulationDesc:
		return bson.D{{Key: "population", Value: -1}, byName}
	case SortPopulationAsc:
		return bson.D{{Key: "population", Value: 1}, byName}
	default:
		return bson.D{byName}
	}
}

func (s *MongoStore) GetByName(ctx context.Context, name string) (*Country, error) {
	var rec Country
	err := s.coll.FindOne(ctx, bson.M{"name_key": NameKey(name)}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NewNotFound("Country")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find country %q: %w", name, err)
	}
	return &rec, nil
}

func (s *MongoStore) DeleteByName(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"name_key": NameKey(name)})
	if err != nil {
		return fmt.Errorf("failed to delete country %q: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return apperr.NewNotFound("Country")
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}
	return n, nil
}

// MostRecentRefresh returns nil when the collection is empty.
func (s *MongoStore) MostRecentRefresh(ctx context.Context) (*time.Time, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "last_refreshed_at", Value: -1}}).
		SetProjection(bson.M{"last_refreshed_at": 1})

	var doc struct {
		LastRefreshedAt time.Time `bson:"last_refreshed_at"`
	}
	err := s.coll.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last refresh time: %w", err)
	}
	return &doc.LastRefreshedAt, nil
}
