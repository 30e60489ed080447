package config

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	CacheNone   = "none"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName        string        `mapstructure:"SERVICE_NAME"`
	HTTPPort           string        `mapstructure:"HTTP_PORT"`
	HTTPRequestTimeout time.Duration `mapstructure:"HTTP_REQUEST_TIMEOUT"`

	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	PostgresDSN   string `mapstructure:"POSTGRES_DSN"`

	CacheDriver     string        `mapstructure:"CACHE_DRIVER"`
	CacheTTL        time.Duration `mapstructure:"CACHE_TTL"`
	CacheMemorySize int           `mapstructure:"CACHE_MEMORY_SIZE"`
	RedisAddress    string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`

	NATSURL string `mapstructure:"NATS_URL"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	JWTSecret       string `mapstructure:"JWT_SECRET"` // verifies tokens issued by the user service
	RateLimitPerMin int    `mapstructure:"RATE_LIMIT_PER_MIN"`

	// TrustProxyHeaders keys rate limits on X-Forwarded-For. Only safe behind a proxy that sets it.
	TrustProxyHeaders bool `mapstructure:"RATE_LIMIT_TRUST_PROXY"`

	PrometheusMetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	DefaultPageSize  int `mapstructure:"DEFAULT_PAGE_SIZE"`
	CategoryPageSize int `mapstructure:"CATEGORY_PAGE_SIZE"`
	MaxPageSize      int `mapstructure:"MAX_PAGE_SIZE"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

const defaultJWTSecret = "your-very-secret-key-for-listing-query-service"

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "listing-query-service")
	v.SetDefault("HTTP_PORT", "8085")
	v.SetDefault("HTTP_REQUEST_TIMEOUT", "10s")
	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "marketplace")
	v.SetDefault("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=marketplace port=5432 sslmode=disable")
	v.SetDefault("CACHE_DRIVER", CacheNone)
	v.SetDefault("CACHE_TTL", "1m")
	v.SetDefault("CACHE_MEMORY_SIZE", 1024)
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NATS_URL", "") // e.g. "nats://localhost:4222"
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "listing-images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("RATE_LIMIT_PER_MIN", 300)
	v.SetDefault("RATE_LIMIT_TRUST_PROXY", false)
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9095")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("DEFAULT_PAGE_SIZE", 24)
	v.SetDefault("CATEGORY_PAGE_SIZE", 12)
	v.SetDefault("MAX_PAGE_SIZE", 100)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// LoadConfig reads configuration from environment variables. A .env file,
// when present, is loaded into the environment by main before this runs.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == defaultJWTSecret || cfg.JWTSecret == "" {
		appLogger.Warn("JWT_SECRET is set to its default insecure value or is empty. Please set a strong secret in your environment.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.Duration("http_request_timeout", cfg.HTTPRequestTimeout),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("cache_driver", cfg.CacheDriver),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.String("nats_url", cfg.NATSURL),
		zap.Bool("minio_configured", cfg.MinioEndpoint != ""),
		zap.Bool("jwt_secret_present", cfg.JWTSecret != ""),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
	)

	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("config: MONGO_URI and MONGO_DATABASE are required for store driver %q", c.StoreDriver)
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("config: POSTGRES_DSN is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.CacheDriver {
	case CacheNone, "":
	case CacheRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("config: REDIS_ADDRESS is required for cache driver %q", c.CacheDriver)
		}
	case CacheMemory:
		if c.CacheMemorySize <= 0 {
			return fmt.Errorf("config: CACHE_MEMORY_SIZE must be positive, got %d", c.CacheMemorySize)
		}
	default:
		return fmt.Errorf("config: unknown CACHE_DRIVER %q", c.CacheDriver)
	}

	if c.DefaultPageSize <= 0 || c.CategoryPageSize <= 0 {
		return fmt.Errorf("config: page sizes must be positive")
	}
	if c.MaxPageSize < c.DefaultPageSize || c.MaxPageSize < c.CategoryPageSize {
		return fmt.Errorf("config: MAX_PAGE_SIZE %d is below a default page size", c.MaxPageSize)
	}
	return nil
}
