package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
)

// fakeStore evaluates predicates and orderings in memory the way a store
// adapter is expected to.
type fakeStore struct {
	mu         sync.Mutex
	listings   []*domain.ListingRecord
	categories []*domain.Category
	locations  []*domain.Location
	err        error
	counts     int
	finds      int
}

func (s *fakeStore) Listings() domain.ListingRepository { return fakeListings{s} }
func (s *fakeStore) Categories() domain.CategoryRepository { return fakeCategories{s} }
func (s *fakeStore) Locations() domain.LocationRepository { return fakeLocations{s} }
func (s *fakeStore) Close(context.Context) error { return nil }

func (s *fakeStore) calls() (counts, finds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts, s.finds
}

type fakeListings struct{ s *fakeStore }

func (r fakeListings) Count(_ context.Context, where domain.Predicate) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.counts++
	if r.s.err != nil {
		return 0, r.s.err
	}
	var n int64
	for _, l := range r.s.listings {
		if matches(where, l) {
			n++
		}
	}
	return n, nil
}

func (r fakeListings) Find(_ context.Context, q domain.ListingQuery) ([]*domain.ListingRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.finds++
	if r.s.err != nil {
		return nil, r.s.err
	}
	var out []*domain.ListingRecord
	for _, l := range r.s.listings {
		if matches(q.Where, l) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(q.Order, out[i], out[j]) })
	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r fakeListings) FindByID(_ context.Context, id int64) (*domain.ListingRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	for _, l := range r.s.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, domain.ErrListingNotFound
}

func matches(p domain.Predicate, l *domain.ListingRecord) bool {
	if len(p.CategoryIDs) > 0 {
		found := false
		for _, id := range p.CategoryIDs {
			if id == l.CategoryID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.LocationID != nil && *p.LocationID != l.LocationID {
		return false
	}
	if p.UserID != nil && *p.UserID != l.UserID {
		return false
	}
	if p.CreatedFrom != nil && l.CreatedAt.Before(*p.CreatedFrom) {
		return false
	}
	if p.HasPriceBound() && l.Price == nil {
		return false
	}
	if p.MinPrice != nil && *l.Price < *p.MinPrice {
		return false
	}
	if p.MaxPrice != nil && *l.Price > *p.MaxPrice {
		return false
	}
	switch p.Price {
	case domain.PricePresent:
		return l.Price != nil
	case domain.PriceAbsent:
		return l.Price == nil
	}
	return true
}

func less(order []domain.OrderBy, a, b *domain.ListingRecord) bool {
	for _, o := range order {
		var c int
		switch o.Field {
		case domain.OrderCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		case domain.OrderID:
			c = cmpInt(a.ID, b.ID)
		case domain.OrderPrice:
			c = cmpPrice(a.Price, b.Price)
		}
		if o.Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cmpPrice sorts nil last ascending, like PostgreSQL's default.
func cmpPrice(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

type fakeCategories struct{ s *fakeStore }

func (r fakeCategories) FindByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	for _, c := range r.s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r fakeCategories) FindChildren(_ context.Context, parentID int64) ([]*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	var out []*domain.Category
	for _, c := range r.s.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r fakeCategories) FindTopLevel(_ context.Context, limit int) ([]*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	var out []*domain.Category
	for _, c := range r.s.categories {
		if c.ParentID == nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeLocations struct{ s *fakeStore }

func (r fakeLocations) FindAll(context.Context) ([]*domain.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	return append([]*domain.Location(nil), r.s.locations...), nil
}

// fakeCache is an in-memory SearchCache.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	hits    int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	c.hits++
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	return nil
}

func price(v float64) *float64 { return &v }

func id64(v int64) *int64 { return &v }

func listing(id int64, p *float64, created time.Time, categoryID int64) *domain.ListingRecord {
	return &domain.ListingRecord{Listing: domain.Listing{
		ID:         id,
		Title:      "listing",
		Price:      p,
		CategoryID: categoryID,
		LocationID: 1,
		UserID:     1,
		CreatedAt:  created,
	}}
}
