package cache

import (
	"context"
	"time"
)

// Cache provides caching for assembled recent-context blocks
type Cache interface {
	// GetMemoryContext retrieves a cached context snapshot for a user
	// Returns nil if not found
	GetMemoryContext(ctx context.Context, userID string) (*MemoryContext, error)

	// SetMemoryContext stores a context snapshot with TTL
	SetMemoryContext(ctx context.Context, userID string, mc *MemoryContext, ttl time.Duration) error

	// InvalidateUser removes the cached context for a user
	InvalidateUser(ctx context.Context, userID string) error

	// Close closes the cache connection
	Close() error
}

// MemoryContext represents a cached recent-context block for prompts
type MemoryContext struct {
	Context     string    `json:"context"`
	ItemCount   int       `json:"item_count"`
	AssembledAt time.Time `json:"assembled_at"`
}
