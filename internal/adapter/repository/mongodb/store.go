package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Store is the MongoDB implementation of domain.Store.
type Store struct {
	client     *mongo.Client
	listings   *ListingRepository
	categories *CategoryRepository
	locations  *LocationRepository
}

// Connect dials uri, verifies the connection and ensures the indexes the
// search queries rely on.
func Connect(ctx context.Context, uri, database string, log *logger.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, domain.StoreError("mongo connect", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, domain.StoreError("mongo ping", err)
	}
	log.Info("Successfully connected to MongoDB", zap.String("database", database))

	s := NewStore(client.Database(database), log)
	s.client = client
	s.ensureIndexes(ctx, log)
	return s, nil
}

// NewStore builds a store over an existing database handle.
func NewStore(db *mongo.Database, log *logger.Logger) *Store {
	return &Store{
		listings:   NewListingRepository(db, log),
		categories: NewCategoryRepository(db, log),
		locations:  NewLocationRepository(db, log),
	}
}

func (s *Store) Listings() domain.ListingRepository { return s.listings }
func (s *Store) Categories() domain.CategoryRepository { return s.categories }
func (s *Store) Locations() domain.LocationRepository { return s.locations }

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}

func (s *Store) ensureIndexes(ctx context.Context, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.listings.collection: {
			{Keys: bson.D{{Key: "category_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "location_id", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		s.listings.images: {
			{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "ordinal", Value: 1}}},
		},
		s.categories.collection: {
			{Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "name", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			// Indexes may be managed outside the service.
			log.Warn("Failed to ensure indexes", zap.String("collection", coll.Name()), zap.Error(err))
		}
	}
}
