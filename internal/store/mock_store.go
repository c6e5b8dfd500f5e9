package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveTask(ctx context.Context, task Task) (Task, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(Task), args.Error(1)
}

func (m *MockStore) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Task), args.Error(1)
}

func (m *MockStore) UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (Task, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(Task), args.Error(1)
}

func (m *MockStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Task), args.Error(1)
}

func (m *MockStore) SaveProposalBatch(ctx context.Context, batch ProposalBatch) (ProposalBatch, error) {
	args := m.Called(ctx, batch)
	return args.Get(0).(ProposalBatch), args.Error(1)
}

func (m *MockStore) GetProposalBatch(ctx context.Context, id uuid.UUID) (ProposalBatch, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ProposalBatch), args.Error(1)
}

func (m *MockStore) ListProposalBatches(ctx context.Context, userID string, filter BatchFilter) ([]ProposalBatch, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProposalBatch), args.Error(1)
}

func (m *MockStore) UpdateProposalBatchStatus(ctx context.Context, id uuid.UUID, status ProposalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) SaveApprovedAction(ctx context.Context, action ApprovedAction) (ApprovedAction, error) {
	args := m.Called(ctx, action)
	return args.Get(0).(ApprovedAction), args.Error(1)
}

func (m *MockStore) ListApprovedActions(ctx context.Context, userID string, limit int) ([]ApprovedAction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ApprovedAction), args.Error(1)
}

func (m *MockStore) SaveMemoryItem(ctx context.Context, item MemoryItem) (MemoryItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(MemoryItem), args.Error(1)
}

func (m *MockStore) GetMemoryItems(ctx context.Context, userID string, filter MemoryFilter) ([]MemoryItem, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]MemoryItem), args.Error(1)
}

func (m *MockStore) CleanupExpiredMemory(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) SaveDailySummary(ctx context.Context, summary DailySummary) (DailySummary, error) {
	args := m.Called(ctx, summary)
	return args.Get(0).(DailySummary), args.Error(1)
}

func (m *MockStore) GetDailySummary(ctx context.Context, userID, date string) (DailySummary, error) {
	args := m.Called(ctx, userID, date)
	return args.Get(0).(DailySummary), args.Error(1)
}
