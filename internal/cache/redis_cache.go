package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache defines the cache interface
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// SetJSONIfAbsent stores value only when key is missing and reports whether it did
	SetJSONIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	// IncrWindow increments key and starts its expiry window on the first hit
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

// RedisCache implements Cache using Redis
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg RedisConfig, logger *logrus.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = logrus.New()
	}

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	if cfg.Port == "" {
		addr = fmt.Sprintf("%s:6379", cfg.Host)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Failed to connect to Redis, cache will be disabled")
		_ = client.Close()
		return nil, err
	}

	logger.WithField("addr", addr).Info("Connected to Redis cache")
	return NewRedisCacheWithClient(client, logger), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

// GetJSON unmarshals a cached value into dest and reports whether it was present
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals and stores a JSON value in cache
func (c *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// SetJSONIfAbsent stores a JSON value unless the key already exists
func (c *RedisCache) SetJSONIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, key, data, ttl).Result()
}

// Delete removes keys from cache
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// IncrWindow implements a fixed-window counter
func (c *RedisCache) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoOpCache is a no-op cache for when Redis is unavailable
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (c *NoOpCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) SetJSONIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return false, nil
}

func (c *NoOpCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}

// IncrWindow always reports a first hit, so throttling is disabled without Redis
func (c *NoOpCache) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 1, nil
}

func (c *NoOpCache) Ping(ctx context.Context) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// StatusCacheKey is the key of an owner's status snapshot for one variant
// Format: onboarding:status:{variant}:{owner_id}
func StatusCacheKey(variant string, ownerID uuid.UUID) string {
	return fmt.Sprintf("onboarding:status:%s:%s", variant, ownerID)
}

// MobileSendCacheKey is the send counter of one contact record
// Format: onboarding:mobile_send:{profile_id}
func MobileSendCacheKey(profileID uuid.UUID) string {
	return fmt.Sprintf("onboarding:mobile_send:%s", profileID)
}
