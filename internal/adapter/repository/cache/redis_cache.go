package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned by Get when no live entry exists.
var ErrCacheMiss = domain.ErrCacheMiss

const generationKey = "search:generation"

// RedisConfig holds the connection settings for the shared cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient connects and pings the server.
func NewRedisClient(cfg RedisConfig, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.String("address", cfg.Address), zap.Error(err))
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Address, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return rdb, nil
}

// RedisCache is a SearchCache shared by every replica. Entries are namespaced
// by a generation counter; bumping the counter orphans all older entries,
// which then expire on their own TTL.
type RedisCache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisCache(client *redis.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, logger: log.Named("RedisSearchCache")}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, err
	}
	val, err := c.client.Get(ctx, generationalKey(gen, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		c.logger.Error("Redis Get operation failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("RedisCache.Get for key '%s': %w", key, err)
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, generationalKey(gen, key), value, ttl).Err(); err != nil {
		c.logger.Error("Redis Set operation failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("RedisCache.Set for key '%s': %w", key, err)
	}
	c.logger.Debug("Redis Set operation successful", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	gen, err := c.client.Incr(ctx, generationKey).Result()
	if err != nil {
		c.logger.Error("Redis Incr operation failed", zap.Error(err))
		return fmt.Errorf("RedisCache.Invalidate: %w", err)
	}
	c.logger.Info("Search cache invalidated", zap.Int64("generation", gen))
	return nil
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("RedisCache.generation: %w", err)
	}
	return gen, nil
}

func generationalKey(gen int64, key string) string {
	return "g" + strconv.FormatInt(gen, 10) + ":" + key
}
