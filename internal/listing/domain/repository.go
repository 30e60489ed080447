package domain

import (
	"context"
	"time"
)

// ListingRepository is the read side of the listing store. FindByID returns
// ErrListingNotFound when the id does not exist.
type ListingRepository interface {
	Count(ctx context.Context, where Predicate) (int64, error)
	Find(ctx context.Context, q ListingQuery) ([]*ListingRecord, error)
	FindByID(ctx context.Context, id int64) (*ListingRecord, error)
}

// CategoryRepository reads the category table. FindByID returns
// ErrCategoryNotFound when the id does not exist.
type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*Category, error)
	FindChildren(ctx context.Context, parentID int64) ([]*Category, error)
	FindTopLevel(ctx context.Context, limit int) ([]*Category, error)
}

type LocationRepository interface {
	FindAll(ctx context.Context) ([]*Location, error)
}

// Store groups the repositories a store adapter provides.
type Store interface {
	Listings() ListingRepository
	Categories() CategoryRepository
	Locations() LocationRepository
	Close(ctx context.Context) error
}

// ImageURLResolver turns a stored image reference into a URL a browser can load.
type ImageURLResolver interface {
	Resolve(ref string) string
}

// SearchCache stores serialized search results. Get returns ErrCacheMiss
// when the key is absent or expired.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate makes every previously stored entry unreachable.
	Invalidate(ctx context.Context) error
}
