package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "listing-query-service/usecase"

// Options tunes the call-site projections of the engine.
type Options struct {
	DefaultPageSize     int // sitewide and author feeds
	CategoryPageSize    int
	MaxPageSize         int
	FeaturedCategories  int // homepage rows
	FeaturedRowSize     int // listings per homepage row
	FeaturedConcurrency int
	CacheTTL            time.Duration
	Now                 func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 24
	}
	if o.CategoryPageSize <= 0 {
		o.CategoryPageSize = 12
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 100
	}
	if o.FeaturedCategories <= 0 {
		o.FeaturedCategories = 5
	}
	if o.FeaturedRowSize <= 0 {
		o.FeaturedRowSize = 10
	}
	if o.FeaturedConcurrency <= 0 {
		o.FeaturedConcurrency = 4
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = time.Minute
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// ListingQueryUseCase is the listing search engine.
type ListingQueryUseCase struct {
	store     domain.Store
	expander  *CategoryExpander
	compiler  *FilterCompiler
	planner   *SortPlanner
	assembler *Assembler
	cache     domain.SearchCache
	metrics   *metrics.MetricsManager
	opts      Options
	logger    *logger.Logger
	tracer    trace.Tracer
}

// NewListingQueryUseCase wires the engine. cache, resolver and mm may be nil.
func NewListingQueryUseCase(
	store domain.Store,
	resolver domain.ImageURLResolver,
	cache domain.SearchCache,
	mm *metrics.MetricsManager,
	opts Options,
	log *logger.Logger,
) *ListingQueryUseCase {
	opts = opts.withDefaults()
	return &ListingQueryUseCase{
		store:     store,
		expander:  NewCategoryExpander(store.Categories()),
		compiler:  NewFilterCompiler(opts.Now),
		planner:   NewSortPlanner(store.Listings()),
		assembler: NewAssembler(resolver),
		cache:     cache,
		metrics:   mm,
		opts:      opts,
		logger:    log.Named("ListingQueryUseCase"),
		tracer:    otel.Tracer(tracerName),
	}
}

// PageDefaults returns the page size normalization for scope.
func (uc *ListingQueryUseCase) PageDefaults(scope Scope) PageDefaults {
	size := uc.opts.DefaultPageSize
	if scope == ScopeCategory {
		size = uc.opts.CategoryPageSize
	}
	return PageDefaults{Size: size, MaxSize: uc.opts.MaxPageSize}
}

// SearchListings runs one search. A category-scoped search on a category
// that does not exist returns domain.ErrCategoryNotFound; store failures wrap
// domain.ErrStoreUnavailable.
func (uc *ListingQueryUseCase) SearchListings(ctx context.Context, req SearchRequest) (*domain.QueryResult, error) {
	req = uc.normalize(req)
	ctx, span := uc.tracer.Start(ctx, "ListingQueryUseCase.SearchListings", trace.WithAttributes(
		attribute.String("search.scope", string(req.Scope)),
		attribute.Int64("search.category_id", req.CategoryID),
		attribute.String("search.sort", string(req.Filters.Sort)),
		attribute.Int("search.page", req.Page.Number),
		attribute.Int("search.page_size", req.Page.Size),
	))
	defer span.End()

	key := cacheKey(req)
	if result, ok := uc.cachedResult(ctx, key); ok {
		span.SetAttributes(attribute.Bool("search.cache_hit", true))
		return result, nil
	}

	result, strategy, err := uc.search(ctx, req)
	if err != nil {
		uc.recordError(req.Scope, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			uc.logger.Error("Listing search failed",
				zap.String("scope", string(req.Scope)),
				zap.Int64("category_id", req.CategoryID),
				zap.Error(err))
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SearchesTotal.WithLabelValues(string(req.Scope), string(strategy)).Inc()
	}
	uc.storeResult(ctx, key, result)
	return result, nil
}

func (uc *ListingQueryUseCase) search(ctx context.Context, req SearchRequest) (*domain.QueryResult, Strategy, error) {
	where := uc.compiler.Compile(req.Filters)

	switch req.Scope {
	case ScopeCategory:
		if _, err := uc.store.Categories().FindByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return nil, "", fmt.Errorf("category %d: %w", req.CategoryID, domain.ErrCategoryNotFound)
			}
			return nil, "", domain.StoreError("find category", err)
		}
		ids, err := uc.expander.Expand(ctx, req.CategoryID)
		if err != nil {
			return nil, "", err
		}
		where.CategoryIDs = ids
	case ScopeAuthor:
		userID := req.UserID
		where.UserID = &userID
	}

	plan := Plan(req.Filters.Sort, where, req.Page)
	rows, total, err := uc.planner.Execute(ctx, plan)
	if err != nil {
		return nil, "", err
	}

	uc.logger.Debug("Listing search executed",
		zap.String("scope", string(req.Scope)),
		zap.String("strategy", string(plan.Strategy)),
		zap.Int("rows", len(rows)),
		zap.Int64("total", total))

	return &domain.QueryResult{
		Items:      uc.assembler.Assemble(rows),
		TotalCount: total,
	}, plan.Strategy, nil
}

// normalize fills in scope-dependent defaults so equal searches share a cache key.
func (uc *ListingQueryUseCase) normalize(req SearchRequest) SearchRequest {
	if req.Scope == "" {
		req.Scope = ScopeSitewide
	}
	defaults := uc.PageDefaults(req.Scope)
	if req.Page.Number < 1 {
		req.Page.Number = 1
	}
	if req.Page.Size < 1 {
		req.Page.Size = defaults.Size
	}
	if req.Page.Size > defaults.MaxSize {
		req.Page.Size = defaults.MaxSize
	}
	if req.Filters.Sort == "" {
		req.Filters.Sort = domain.SortNewest
	}
	if req.Scope != ScopeCategory {
		req.CategoryID = 0
	}
	if req.Scope != ScopeAuthor {
		req.UserID = 0
	}
	return req
}

// LatestListings is the sitewide newest-first feed.
func (uc *ListingQueryUseCase) LatestListings(ctx context.Context, page int) (*domain.QueryResult, error) {
	return uc.SearchListings(ctx, SearchRequest{
		Scope:   ScopeSitewide,
		Page:    domain.PageRequest{Number: page, Size: uc.opts.DefaultPageSize},
		Filters: domain.FilterSet{Sort: domain.SortNewest},
	})
}

// ListingsByAuthor returns userID's listings, newest first.
func (uc *ListingQueryUseCase) ListingsByAuthor(ctx context.Context, userID int64, page domain.PageRequest) (*domain.QueryResult, error) {
	return uc.SearchListings(ctx, SearchRequest{
		Scope:   ScopeAuthor,
		UserID:  userID,
		Page:    page,
		Filters: domain.FilterSet{Sort: domain.SortNewest},
	})
}

// FeaturedCategories returns the homepage rows: top-level categories by name,
// each with its newest listings across the category and its children. A row
// whose listings cannot be loaded is returned empty.
func (uc *ListingQueryUseCase) FeaturedCategories(ctx context.Context) ([]domain.FeaturedCategory, error) {
	ctx, span := uc.tracer.Start(ctx, "ListingQueryUseCase.FeaturedCategories")
	defer span.End()

	top, err := uc.store.Categories().FindTopLevel(ctx, uc.opts.FeaturedCategories)
	if err != nil {
		err = domain.StoreError("find top-level categories", err)
		uc.recordError("featured", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rows := make([]domain.FeaturedCategory, len(top))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.FeaturedConcurrency)
	for i, c := range top {
		rows[i] = domain.FeaturedCategory{ID: c.ID, Name: c.Name, Description: c.Description, Listings: []domain.ListingView{}}
		g.Go(func() error {
			listings, err := uc.featuredRow(gctx, c.ID)
			if err != nil {
				uc.recordError("featured", err)
				uc.logger.Warn("Featured category row failed, returning it empty",
					zap.Int64("category_id", c.ID), zap.Error(err))
				return nil
			}
			rows[i].Listings = listings
			return nil
		})
	}
	_ = g.Wait()
	return rows, nil
}

func (uc *ListingQueryUseCase) featuredRow(ctx context.Context, categoryID int64) ([]domain.ListingView, error) {
	ids, err := uc.expander.Expand(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	records, err := uc.store.Listings().Find(ctx, domain.ListingQuery{
		Where: domain.Predicate{CategoryIDs: ids},
		Order: orderNewest,
		Limit: uc.opts.FeaturedRowSize,
	})
	if err != nil {
		return nil, domain.StoreError("find featured listings", err)
	}
	return uc.assembler.Assemble(records), nil
}

// GetCategory returns a category with its parent's name and its direct subcategories.
func (uc *ListingQueryUseCase) GetCategory(ctx context.Context, id int64) (*domain.CategoryDetail, error) {
	ctx, span := uc.tracer.Start(ctx, "ListingQueryUseCase.GetCategory", trace.WithAttributes(attribute.Int64("category.id", id)))
	defer span.End()

	categories := uc.store.Categories()
	c, err := categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, domain.ErrCategoryNotFound)
		}
		return nil, domain.StoreError("find category", err)
	}

	detail := &domain.CategoryDetail{Category: *c, Subcategories: []*domain.Category{}}
	if c.ParentID != nil {
		parent, err := categories.FindByID(ctx, *c.ParentID)
		switch {
		case err == nil:
			detail.ParentName = parent.Name
		case errors.Is(err, domain.ErrCategoryNotFound):
			uc.logger.Warn("Category references a missing parent",
				zap.Int64("category_id", id), zap.Int64("parent_id", *c.ParentID))
		default:
			return nil, domain.StoreError("find parent category", err)
		}
	}

	children, err := categories.FindChildren(ctx, id)
	if err != nil {
		return nil, domain.StoreError("find subcategories", err)
	}
	if children != nil {
		detail.Subcategories = children
	}
	return detail, nil
}

// GetListing returns one listing with all of its resolved images. Lookups
// bypass the search cache.
func (uc *ListingQueryUseCase) GetListing(ctx context.Context, id int64) (*domain.ListingDetail, error) {
	ctx, span := uc.tracer.Start(ctx, "ListingQueryUseCase.GetListing", trace.WithAttributes(attribute.Int64("listing.id", id)))
	defer span.End()

	row, err := uc.store.Listings().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			err = fmt.Errorf("listing %d: %w", id, domain.ErrListingNotFound)
		} else {
			err = domain.StoreError("find listing", err)
			uc.logger.Error("Listing lookup failed", zap.Int64("listing_id", id), zap.Error(err))
		}
		uc.recordError("listing", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	detail := uc.assembler.AssembleDetail(row)
	return &detail, nil
}

// ListLocations returns every location ordered by name.
func (uc *ListingQueryUseCase) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	locations, err := uc.store.Locations().FindAll(ctx)
	if err != nil {
		err = domain.StoreError("find locations", err)
		uc.recordError("locations", err)
		return nil, err
	}
	sort.SliceStable(locations, func(i, j int) bool { return locations[i].Name < locations[j].Name })
	return locations, nil
}

// InvalidateCache drops every cached search result.
func (uc *ListingQueryUseCase) InvalidateCache(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate search cache: %w", err)
	}
	return nil
}

// RecordInvalidFilters logs and counts filter values a caller ignored while parsing.
func (uc *ListingQueryUseCase) RecordInvalidFilters(warnings []error) {
	for _, w := range warnings {
		field := "unknown"
		var fe *domain.FilterError
		if errors.As(w, &fe) {
			field = fe.Field
		}
		uc.logger.Warn("Ignoring invalid filter value", zap.String("field", field), zap.Error(w))
		if uc.metrics != nil {
			uc.metrics.InvalidFilters.WithLabelValues(field).Inc()
		}
	}
}

func (uc *ListingQueryUseCase) cachedResult(ctx context.Context, key string) (*domain.QueryResult, bool) {
	if uc.cache == nil {
		return nil, false
	}
	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			uc.countCache("miss")
		} else {
			uc.countCache("error")
			uc.logger.Warn("Search cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var result domain.QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		uc.countCache("error")
		uc.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if result.Items == nil {
		result.Items = []domain.ListingView{}
	}
	uc.countCache("hit")
	return &result, true
}

func (uc *ListingQueryUseCase) storeResult(ctx context.Context, key string, result *domain.QueryResult) {
	if uc.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		uc.logger.Warn("Failed to encode search result for cache", zap.Error(err))
		return
	}
	if err := uc.cache.Set(ctx, key, data, uc.opts.CacheTTL); err != nil {
		uc.logger.Warn("Search cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (uc *ListingQueryUseCase) countCache(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheLookupsTotal.WithLabelValues(result).Inc()
	}
}

func (uc *ListingQueryUseCase) recordError(scope Scope, err error) {
	if uc.metrics == nil {
		return
	}
	kind := "store_unavailable"
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound), errors.Is(err, domain.ErrListingNotFound):
		kind = "not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = "timeout"
	}
	uc.metrics.SearchErrorsTotal.WithLabelValues(string(scope), kind).Inc()
}

// cacheKey hashes the normalized request.
func cacheKey(req SearchRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return "search:" + hex.EncodeToString(sum[:])
}
