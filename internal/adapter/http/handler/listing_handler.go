package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListingQueryService is the part of the use case the HTTP layer calls.
type ListingQueryService interface {
	PageDefaults(scope usecase.Scope) usecase.PageDefaults
	SearchListings(ctx context.Context, req usecase.SearchRequest) (*domain.QueryResult, error)
	FeaturedCategories(ctx context.Context) ([]domain.FeaturedCategory, error)
	GetCategory(ctx context.Context, id int64) (*domain.CategoryDetail, error)
	GetListing(ctx context.Context, id int64) (*domain.ListingDetail, error)
	ListLocations(ctx context.Context) ([]*domain.Location, error)
	RecordInvalidFilters(warnings []error)
}

// ListingHandler serves the listing read API.
type ListingHandler struct {
	service ListingQueryService
	logger  *logger.Logger
}

func NewListingHandler(service ListingQueryService, log *logger.Logger) *ListingHandler {
	return &ListingHandler{service: service, logger: log.Named("ListingHandler")}
}

// HandleSearchListings serves GET /api/listings.
func (h *ListingHandler) HandleSearchListings(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, usecase.SearchRequest{Scope: usecase.ScopeSitewide})
}

// HandleCategoryListings serves GET /api/categories/{id}/listings.
func (h *ListingHandler) HandleCategoryListings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	h.search(w, r, usecase.SearchRequest{Scope: usecase.ScopeCategory, CategoryID: id})
}

// HandleUserListings serves GET /api/users/{id}/listings.
func (h *ListingHandler) HandleUserListings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	h.search(w, r, usecase.SearchRequest{Scope: usecase.ScopeAuthor, UserID: id})
}

// HandleMyListings serves GET /api/me/listings. It must run behind JWTAuth.
func (h *ListingHandler) HandleMyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.search(w, r, usecase.SearchRequest{Scope: usecase.ScopeAuthor, UserID: userID})
}

func (h *ListingHandler) search(w http.ResponseWriter, r *http.Request, req usecase.SearchRequest) {
	page, filters, warnings := usecase.ParseQuery(rawQuery(r), h.service.PageDefaults(req.Scope))
	if len(warnings) > 0 {
		h.service.RecordInvalidFilters(warnings)
	}
	if req.Scope == usecase.ScopeAuthor {
		// Profile feeds are always newest first.
		filters.Sort = domain.SortNewest
	}
	req.Page = page
	req.Filters = filters

	result, err := h.service.SearchListings(r.Context(), req)
	if err != nil {
		h.writeSearchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSearchResponse(result, page))
}

// HandleFeaturedCategories serves GET /api/categories/featured.
func (h *ListingHandler) HandleFeaturedCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.FeaturedCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to load featured categories", zap.Error(err))
		writeJSON(w, statusFor(err), featuredResponse{Categories: []domain.FeaturedCategory{}, Error: publicMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, featuredResponse{Categories: rows})
}

// HandleGetCategory serves GET /api/categories/{id}.
func (h *ListingHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			h.logger.Error("Failed to load category", zap.Int64("category_id", id), zap.Error(err))
		}
		writeError(w, statusFor(err), publicMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponse(detail))
}

// HandleGetListing serves GET /api/listings/{id}.
func (h *ListingHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.service.GetListing(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			h.logger.Error("Failed to load listing", zap.Int64("listing_id", id), zap.Error(err))
		}
		writeError(w, statusFor(err), publicMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleListLocations serves GET /api/locations.
func (h *ListingHandler) HandleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.ListLocations(r.Context())
	if err != nil {
		h.logger.Error("Failed to load locations", zap.Error(err))
		writeJSON(w, statusFor(err), locationsResponse{Items: []locationResponse{}, Error: publicMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, newLocationsResponse(locations))
}

func (h *ListingHandler) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusNotFound {
		writeError(w, status, publicMessage(err))
		return
	}
	h.logger.Error("Search request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		zap.Error(err))
	writeJSON(w, status, degradedResponse{Items: []domain.ListingView{}, TotalCount: 0, Error: publicMessage(err)})
}

func (h *ListingHandler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := usecase.ParseID(param, chi.URLParam(r, param))
	if err != nil {
		h.logger.Debug("Rejecting malformed path id", zap.String("value", chi.URLParam(r, param)))
		writeError(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}

func rawQuery(r *http.Request) usecase.RawQuery {
	q := r.URL.Query()
	size := q.Get("pageSize")
	if size == "" {
		size = q.Get("limit")
	}
	return usecase.RawQuery{
		Page:     q.Get("page"),
		PageSize: size,
		Location: q.Get("location"),
		Date:     q.Get("date"),
		MinPrice: q.Get("minPrice"),
		MaxPrice: q.Get("maxPrice"),
		Sort:     q.Get("sort"),
	}
}

// statusFor maps use case errors to HTTP. Timeouts count as the store being unavailable.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrCategoryNotFound) || errors.Is(err, domain.ErrListingNotFound) {
		return http.StatusNotFound
	}
	return http.StatusServiceUnavailable
}

// publicMessage keeps driver details out of responses.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		return domain.ErrCategoryNotFound.Error()
	case errors.Is(err, domain.ErrListingNotFound):
		return domain.ErrListingNotFound.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	default:
		return domain.ErrStoreUnavailable.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
