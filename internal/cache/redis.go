package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefix for cached context blocks, one key per user
const contextKeyPrefix = "context:"

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{
		client: client,
	}, nil
}

// GetMemoryContext retrieves a cached context snapshot for a user
func (c *RedisCache) GetMemoryContext(ctx context.Context, userID string) (*MemoryContext, error) {
	data, err := c.client.Get(ctx, contextKeyPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var mc MemoryContext
	if err := json.Unmarshal(data, &mc); err != nil {
		return nil, err
	}
	return &mc, nil
}

// SetMemoryContext stores a context snapshot with TTL
func (c *RedisCache) SetMemoryContext(ctx context.Context, userID string, mc *MemoryContext, ttl time.Duration) error {
	data, err := json.Marshal(mc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, contextKeyPrefix+userID, data, ttl).Err()
}

// InvalidateUser removes the cached context for a user.
// New memory items change what the next prompt should see.
func (c *RedisCache) InvalidateUser(ctx context.Context, userID string) error {
	return c.client.Del(ctx, contextKeyPrefix+userID).Err()
}

// Close closes the cache connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
