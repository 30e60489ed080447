package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Adapters
	httpHandler "github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/http/handler"
	httpRouter "github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/http/router"
	natsAdapter "github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/repository/postgres"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/adapter/storage/s3"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/usecase"

	// Platform
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting...", zap.String("service_name", cfg.ServiceName))

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)

	store, err := openStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open listing store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() {
		ctxClose, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctxClose); err != nil {
			appLogger.Error("Error closing listing store", zap.Error(err))
		}
	}()

	searchCache, closeCache, err := openCache(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize search cache", zap.String("driver", cfg.CacheDriver), zap.Error(err))
	}
	defer closeCache()

	var resolver domain.ImageURLResolver
	if cfg.MinioEndpoint != "" {
		imageResolver, err := s3.NewImageResolver(context.Background(), s3.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize image resolver", zap.Error(err))
		}
		resolver = imageResolver
	} else {
		resolver = s3.NewStaticResolver("", "", appLogger)
		appLogger.Info("MinIO not configured, only absolute image URLs will resolve.")
	}

	listingUC := usecase.NewListingQueryUseCase(store, resolver, searchCache, metricsManager, usecase.Options{
		DefaultPageSize:  cfg.DefaultPageSize,
		CategoryPageSize: cfg.CategoryPageSize,
		MaxPageSize:      cfg.MaxPageSize,
		CacheTTL:         cfg.CacheTTL,
	}, appLogger)

	if cfg.NATSURL != "" && searchCache != nil {
		subscriber, err := natsAdapter.NewSubscriber(cfg.NATSURL, appLogger, cfg.ServiceName, listingUC)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS subscriber", zap.Error(err))
		}
		defer subscriber.Close()
		if err := subscriber.Start(); err != nil {
			appLogger.Fatal("Failed to subscribe to listing events", zap.Error(err))
		}
	} else {
		appLogger.Info("NATS cache invalidation disabled (NATS_URL not set or no cache configured).")
	}

	handler := httpHandler.NewListingHandler(listingUC, appLogger)
	router := httpRouter.New(handler, httpRouter.Config{
		JWTSecret:         cfg.JWTSecret,
		RateLimitPerMin:   cfg.RateLimitPerMin,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		RequestTimeout:    cfg.HTTPRequestTimeout,
	}, appLogger, metricsManager)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPRequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application shutting down...")
}

func openStore(cfg *config.Config, log *logger.Logger) (domain.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StorePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreMongo:
		store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// openCache returns a nil cache when caching is disabled.
func openCache(cfg *config.Config, log *logger.Logger) (domain.SearchCache, func(), error) {
	switch cfg.CacheDriver {
	case config.CacheRedis:
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return nil, func() {}, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}
		return cache.NewRedisCache(client, log), closeFn, nil
	case config.CacheMemory:
		log.Info("Using in-process search cache", zap.Int("size", cfg.CacheMemorySize), zap.Duration("ttl", cfg.CacheTTL))
		return cache.NewMemoryCache(cfg.CacheMemorySize, cfg.CacheTTL), func() {}, nil
	default:
		log.Info("Search result cache disabled")
		return nil, func() {}, nil
	}
}
