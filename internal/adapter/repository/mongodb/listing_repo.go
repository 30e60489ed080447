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

// ListingRepository reads listings and joins their relations with batched
// lookups, one query per related collection.
type ListingRepository struct {
	collection *mongo.Collection
	categories *mongo.Collection
	locations  *mongo.Collection
	images     *mongo.Collection
	users      *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(listingsCollection),
		categories: db.Collection(categoriesCollection),
		locations:  db.Collection(locationsCollection),
		images:     db.Collection(imagesCollection),
		users:      db.Collection(usersCollection),
		logger:     log.Named("MongoListingRepository"),
	}
}

func (r *ListingRepository) Count(ctx context.Context, where domain.Predicate) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, buildFilter(where))
	if err != nil {
		r.logger.Error("Failed to count listings", zap.Error(err))
		return 0, domain.StoreError("db count failed", err)
	}
	return n, nil
}

func (r *ListingRepository) Find(ctx context.Context, q domain.ListingQuery) ([]*domain.ListingRecord, error) {
	findOptions := options.Find().SetSort(buildSort(q.Order))
	if q.Offset > 0 {
		findOptions.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := r.collection.Find(ctx, buildFilter(q.Where), findOptions)
	if err != nil {
		r.logger.Error("Failed to find listings", zap.Error(err))
		return nil, domain.StoreError("db find failed", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, domain.StoreError("db cursor all failed", err)
	}
	if len(docs) == 0 {
		return []*domain.ListingRecord{}, nil
	}
	return r.join(ctx, docs)
}

func (r *ListingRepository) FindByID(ctx context.Context, id int64) (*domain.ListingRecord, error) {
	var doc listingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to get listing", zap.Int64("listing_id", id), zap.Error(err))
		return nil, domain.StoreError("db find one failed", err)
	}
	records, err := r.join(ctx, []*listingDocument{&doc})
	if err != nil {
		return nil, err
	}
	return records[0], nil
}

// join attaches category, location, images and author to each listing.
// Dangling references leave the relation nil.
func (r *ListingRepository) join(ctx context.Context, docs []*listingDocument) ([]*domain.ListingRecord, error) {
	listingIDs := make([]int64, 0, len(docs))
	categoryIDs := make([]int64, 0, len(docs))
	locationIDs := make([]int64, 0, len(docs))
	userIDs := make([]int64, 0, len(docs))
	for _, d := range docs {
		listingIDs = append(listingIDs, d.ID)
		categoryIDs = append(categoryIDs, d.CategoryID)
		locationIDs = append(locationIDs, d.LocationID)
		userIDs = append(userIDs, d.UserID)
	}

	var categories []*categoryDocument
	if err := r.findIn(ctx, r.categories, "_id", categoryIDs, nil, &categories); err != nil {
		return nil, err
	}
	var locations []*locationDocument
	if err := r.findIn(ctx, r.locations, "_id", locationIDs, nil, &locations); err != nil {
		return nil, err
	}
	var users []*userDocument
	if err := r.findIn(ctx, r.users, "_id", userIDs, nil, &users); err != nil {
		return nil, err
	}
	var images []*imageDocument
	imageSort := bson.D{{Key: "listing_id", Value: 1}, {Key: "ordinal", Value: 1}}
	if err := r.findIn(ctx, r.images, "listing_id", listingIDs, imageSort, &images); err != nil {
		return nil, err
	}

	categoryByID := make(map[int64]*categoryDocument, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}
	locationByID := make(map[int64]*locationDocument, len(locations))
	for _, l := range locations {
		locationByID[l.ID] = l
	}
	userByID := make(map[int64]*userDocument, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	imagesByListing := make(map[int64][]domain.Image, len(docs))
	for _, img := range images {
		imagesByListing[img.ListingID] = append(imagesByListing[img.ListingID], domain.Image{
			ListingID: img.ListingID,
			URL:       img.ImageURL,
			Ordinal:   img.Ordinal,
		})
	}

	records := make([]*domain.ListingRecord, 0, len(docs))
	for _, d := range docs {
		rec := &domain.ListingRecord{Listing: d.toDomain(), Images: imagesByListing[d.ID]}
		if c, ok := categoryByID[d.CategoryID]; ok {
			rec.Category = &domain.CategoryRef{ID: c.ID, Name: c.Name}
		}
		if l, ok := locationByID[d.LocationID]; ok {
			rec.Location = &domain.LocationRef{Name: l.Name}
		}
		if u, ok := userByID[d.UserID]; ok {
			rec.Author = &domain.Author{ID: u.ID, Name: u.Name, Role: u.Role, ProfilePicture: u.ProfilePicture}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *ListingRepository) findIn(ctx context.Context, coll *mongo.Collection, field string, ids []int64, sort bson.D, out interface{}) error {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := coll.Find(ctx, bson.M{field: bson.M{"$in": uniqueIDs(ids)}}, opts)
	if err != nil {
		r.logger.Error("Failed to load related documents", zap.String("collection", coll.Name()), zap.Error(err))
		return domain.StoreError("db find "+coll.Name()+" failed", err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return domain.StoreError("db decode "+coll.Name()+" failed", err)
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
