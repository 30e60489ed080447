//go:build integration

package mongodb

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "6.0",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}
	uri := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))

	var client *mongo.Client
	if err := pool.Retry(func() error {
		var errRetry error
		client, errRetry = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if errRetry != nil {
			return errRetry
		}
		return client.Ping(context.Background(), nil)
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}
	testDB = client.Database("listing_query_test")

	code := m.Run()

	_ = client.Disconnect(context.Background())
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, testDB.Drop(ctx))

	parent := int64(1)
	_, err := testDB.Collection(categoriesCollection).InsertMany(ctx, []interface{}{
		categoryDocument{ID: 1, Name: "Furniture"},
		categoryDocument{ID: 2, Name: "Sofas", ParentID: &parent},
		categoryDocument{ID: 3, Name: "Garden"},
	})
	require.NoError(t, err)

	_, err = testDB.Collection(locationsCollection).InsertMany(ctx, []interface{}{
		locationDocument{ID: 1, Name: "Almaty"},
	})
	require.NoError(t, err)

	_, err = testDB.Collection(usersCollection).InsertMany(ctx, []interface{}{
		userDocument{ID: 7, Name: "Aigerim", Role: "Seller"},
	})
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := func(v float64) *float64 { return &v }
	_, err = testDB.Collection(listingsCollection).InsertMany(ctx, []interface{}{
		listingDocument{ID: 1, Title: "A", Price: p(30), CategoryID: 1, LocationID: 1, UserID: 7, CreatedAt: base.Add(1 * time.Minute)},
		listingDocument{ID: 2, Title: "B", CategoryID: 2, LocationID: 1, UserID: 7, CreatedAt: base.Add(2 * time.Minute)},
		listingDocument{ID: 3, Title: "C", Price: p(10), CategoryID: 1, LocationID: 99, UserID: 7, CreatedAt: base.Add(3 * time.Minute)},
		listingDocument{ID: 4, Title: "D", CategoryID: 2, LocationID: 1, UserID: 8, CreatedAt: base.Add(4 * time.Minute)},
		listingDocument{ID: 5, Title: "E", Price: p(20), CategoryID: 1, LocationID: 1, UserID: 7, CreatedAt: base.Add(5 * time.Minute)},
		listingDocument{ID: 6, Title: "F", Price: p(5), CategoryID: 3, LocationID: 1, UserID: 7, CreatedAt: base.Add(6 * time.Minute)},
	})
	require.NoError(t, err)

	_, err = testDB.Collection(imagesCollection).InsertMany(ctx, []interface{}{
		imageDocument{ListingID: 1, ImageURL: "https://cdn.example/a-2.jpg", Ordinal: 2},
		imageDocument{ListingID: 1, ImageURL: "https://cdn.example/a-1.jpg", Ordinal: 1},
	})
	require.NoError(t, err)
}

func TestStore_PriceSortThroughUseCase(t *testing.T) {
	seed(t)
	store := NewStore(testDB, logger.NewNop())
	uc := usecase.NewListingQueryUseCase(store, nil, nil, nil, usecase.Options{}, logger.NewNop())

	req := usecase.SearchRequest{
		Scope:      usecase.ScopeCategory,
		CategoryID: 1,
		Page:       domain.PageRequest{Number: 1, Size: 3},
		Filters:    domain.FilterSet{Sort: domain.SortPriceLow},
	}
	page1, err := uc.SearchListings(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page1.TotalCount)
	require.Len(t, page1.Items, 3)
	assert.Equal(t, []int64{3, 5, 1}, []int64{page1.Items[0].ID, page1.Items[1].ID, page1.Items[2].ID})

	req.Page.Number = 2
	page2, err := uc.SearchListings(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, []int64{4, 2}, []int64{page2.Items[0].ID, page2.Items[1].ID})
}

func TestStore_JoinsRelationsAndFallsBack(t *testing.T) {
	seed(t)
	store := NewStore(testDB, logger.NewNop())

	rows, err := store.Listings().Find(context.Background(), domain.ListingQuery{
		Where: domain.Predicate{CategoryIDs: []int64{1}},
		Order: []domain.OrderBy{{Field: domain.OrderID}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	a := rows[0]
	require.NotNil(t, a.Category)
	assert.Equal(t, "Furniture", a.Category.Name)
	require.NotNil(t, a.Author)
	assert.Equal(t, "Aigerim", a.Author.Name)
	require.Len(t, a.Images, 2)
	assert.Equal(t, "https://cdn.example/a-1.jpg", a.Images[0].URL)

	c := rows[1]
	assert.Nil(t, c.Location, "dangling location reference")

	one, err := store.Listings().FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Title, one.Title)
	require.NotNil(t, one.Category)
	assert.Equal(t, "Furniture", one.Category.Name)
	require.Len(t, one.Images, 2)
	assert.Equal(t, "https://cdn.example/a-1.jpg", one.Images[0].URL)

	_, err = store.Listings().FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestStore_PriceFilterAndNotFound(t *testing.T) {
	seed(t)
	store := NewStore(testDB, logger.NewNop())
	lo := 15.0

	n, err := store.Listings().Count(context.Background(), domain.Predicate{MinPrice: &lo})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.Listings().Count(context.Background(), domain.Predicate{Price: domain.PriceAbsent})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.Categories().FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	top, err := store.Categories().FindTopLevel(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Furniture", top[0].Name)
}
