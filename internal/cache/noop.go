package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing.
// Used as a fallback when Redis is unavailable - all operations succeed
// but no actual caching occurs (always cache miss).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetMemoryContext always returns nil (cache miss)
func (c *NoOpCache) GetMemoryContext(ctx context.Context, userID string) (*MemoryContext, error) {
	return nil, nil
}

// SetMemoryContext does nothing and always succeeds
func (c *NoOpCache) SetMemoryContext(ctx context.Context, userID string, mc *MemoryContext, ttl time.Duration) error {
	return nil
}

// InvalidateUser does nothing and always succeeds
func (c *NoOpCache) InvalidateUser(ctx context.Context, userID string) error {
	return nil
}

// Close does nothing and always succeeds
func (c *NoOpCache) Close() error {
	return nil
}
