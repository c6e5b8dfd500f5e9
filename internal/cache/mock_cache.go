package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCache is a mock implementation of the Cache interface for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetMemoryContext(ctx context.Context, userID string) (*MemoryContext, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MemoryContext), args.Error(1)
}

func (m *MockCache) SetMemoryContext(ctx context.Context, userID string, mc *MemoryContext, ttl time.Duration) error {
	args := m.Called(ctx, userID, mc, ttl)
	return args.Error(0)
}

func (m *MockCache) InvalidateUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
