package router

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Config carries the router's middleware settings.
type Config struct {
	JWTSecret         string
	RateLimitPerMin   int // 0 disables rate limiting
	TrustProxyHeaders bool
	RequestTimeout    time.Duration
}

// New builds the HTTP router. mm may be nil.
func New(h *handler.ListingHandler, cfg Config, log *logger.Logger, mm *metrics.MetricsManager) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log, mm))
	r.Use(chimw.Recoverer)
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitPerMin, cfg.TrustProxyHeaders, log).Middleware)
	}
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	SetupListingRoutes(r, h, cfg.JWTSecret, log)
	return r
}

// SetupListingRoutes mounts the listing read API on mux.
func SetupListingRoutes(mux *chi.Mux, h *handler.ListingHandler, jwtSecret string, log *logger.Logger) {
	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtSecret, log))
		r.Get("/api/me/listings", h.HandleMyListings)
	})

	mux.Get("/api/listings", h.HandleSearchListings)
	mux.Get("/api/listings/{id}", h.HandleGetListing)
	mux.Get("/api/locations", h.HandleListLocations)
	mux.Get("/api/users/{id}/listings", h.HandleUserListings)
	mux.Route("/api/categories", func(r chi.Router) {
		r.Get("/featured", h.HandleFeaturedCategories)
		r.Get("/{id}", h.HandleGetCategory)
		r.Get("/{id}/listings", h.HandleCategoryListings)
	})
}
