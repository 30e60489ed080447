package mongodb

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type CategoryRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewCategoryRepository(db *mongo.Database, log *logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection(categoriesCollection),
		logger:     log.Named("MongoCategoryRepository"),
	}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	var doc categoryDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("Category not found in DB", zap.Int64("category_id", id))
			return nil, domain.ErrCategoryNotFound
		}
		r.logger.Error("Failed to get category by ID", zap.Int64("category_id", id), zap.Error(err))
		return nil, domain.StoreError("db findone failed", err)
	}
	return doc.toDomain(), nil
}

func (r *CategoryRepository) FindChildren(ctx context.Context, parentID int64) ([]*domain.Category, error) {
	return r.find(ctx, bson.M{"parent_id": parentID}, 0)
}

// FindTopLevel returns categories without a parent ordered by name.
func (r *CategoryRepository) FindTopLevel(ctx context.Context, limit int) ([]*domain.Category, error) {
	return r.find(ctx, bson.M{"parent_id": nil}, limit)
}

func (r *CategoryRepository) find(ctx context.Context, filter bson.M, limit int) ([]*domain.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to find categories", zap.Error(err))
		return nil, domain.StoreError("db find failed", err)
	}
	defer cursor.Close(ctx)

	var docs []*categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.StoreError("db cursor all failed", err)
	}
	return toDomainCategories(docs), nil
}

type LocationRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewLocationRepository(db *mongo.Database, log *logger.Logger) *LocationRepository {
	return &LocationRepository{
		collection: db.Collection(locationsCollection),
		logger:     log.Named("MongoLocationRepository"),
	}
}

func (r *LocationRepository) FindAll(ctx context.Context) ([]*domain.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		r.logger.Error("Failed to find locations", zap.Error(err))
		return nil, domain.StoreError("db find failed", err)
	}
	defer cursor.Close(ctx)

	var docs []*locationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.StoreError("db cursor all failed", err)
	}
	out := make([]*domain.Location, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
