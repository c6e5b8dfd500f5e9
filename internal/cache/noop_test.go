package cache

import (
	"context"
	"testing"
	"time"
)

// TestNoOpCache verifies that NoOpCache implements the Cache interface correctly
func TestNoOpCache(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	// Test GetMemoryContext - should always return nil (cache miss)
	mc, err := cache.GetMemoryContext(ctx, "user-1")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if mc != nil {
		t.Errorf("Expected nil result (cache miss), got %v", mc)
	}

	// Test SetMemoryContext - should succeed silently
	err = cache.SetMemoryContext(ctx, "user-1", &MemoryContext{
		Context:     "- [decision] Ship the beta on Friday",
		ItemCount:   1,
		AssembledAt: time.Now(),
	}, 5*time.Minute)
	if err != nil {
		t.Errorf("Expected no error on SetMemoryContext, got %v", err)
	}

	// Verify it still returns nil (nothing was actually cached)
	mc, err = cache.GetMemoryContext(ctx, "user-1")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if mc != nil {
		t.Errorf("Expected nil result (no-op cache doesn't store), got %v", mc)
	}

	// Test InvalidateUser - should succeed silently
	err = cache.InvalidateUser(ctx, "user-1")
	if err != nil {
		t.Errorf("Expected no error on InvalidateUser, got %v", err)
	}

	// Test Close - should succeed silently
	err = cache.Close()
	if err != nil {
		t.Errorf("Expected no error on Close, got %v", err)
	}
}
