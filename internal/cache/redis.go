package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/moneta/internal/efficiency"
)

// FeaturesKey holds the latest player-feature snapshot.
const FeaturesKey = "moneta:features:latest"

// RedisCache handles caching and fast state storage
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisCacheFromClient(client, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Set stores a key-value pair with TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value by key
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// SetFeatures stores the feature snapshot as JSON under FeaturesKey.
func (rc *RedisCache) SetFeatures(ctx context.Context, features []efficiency.PlayerFeature) error {
	data, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	return rc.Set(ctx, FeaturesKey, data, rc.ttl)
}

// GetFeatures returns the cached snapshot. The second result is false on a miss.
func (rc *RedisCache) GetFeatures(ctx context.Context) ([]efficiency.PlayerFeature, bool, error) {
	raw, err := rc.Get(ctx, FeaturesKey)
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var features []efficiency.PlayerFeature
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return nil, false, fmt.Errorf("unmarshal features: %w", err)
	}
	return features, true, nil
}
