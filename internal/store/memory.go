package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTaskLimit  = 100
	defaultBatchLimit = 50
)

// MemoryStore is the reference Store implementation backed by process
// memory. Every collection has its own lock so concurrent pipelines touching
// different collections do not serialize on a single mutex.
type MemoryStore struct {
	tasksMu sync.RWMutex
	tasks   map[uuid.UUID]Task

	batchesMu sync.RWMutex
	batches   map[uuid.UUID]ProposalBatch

	actionsMu sync.RWMutex
	actions   []ApprovedAction

	memoryMu sync.RWMutex
	memory   map[uuid.UUID]MemoryItem

	summariesMu sync.RWMutex
	summaries   map[string]DailySummary
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:     make(map[uuid.UUID]Task),
		batches:   make(map[uuid.UUID]ProposalBatch),
		memory:    make(map[uuid.UUID]MemoryItem),
		summaries: make(map[string]DailySummary),
	}
}

func (s *MemoryStore) SaveTask(_ context.Context, task Task) (Task, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	if task.Status == "" {
		task.Status = TaskPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.UpdatedAt = task.CreatedAt

	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	s.tasks[task.ID] = task
	return task, nil
}

func (s *MemoryStore) GetTask(_ context.Context, id uuid.UUID) (Task, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return task, nil
}

func (s *MemoryStore) UpdateTask(_ context.Context, id uuid.UUID, update TaskUpdate) (Task, error) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Owner != nil {
		task.Owner = *update.Owner
	}
	if update.Deadline != nil {
		task.Deadline = *update.Deadline
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.Tags != nil {
		task.Tags = update.Tags
	}
	task.UpdatedAt = time.Now().UTC()
	s.tasks[id] = task
	return task, nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, id uuid.UUID) error {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) ListTasks(_ context.Context, filter TaskFilter) ([]Task, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	tasks := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Source != "" && task.SourceType != filter.Source {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTaskLimit
	}
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (s *MemoryStore) SaveProposalBatch(_ context.Context, batch ProposalBatch) (ProposalBatch, error) {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	if batch.Status == "" {
		batch.Status = StatusProposed
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	// Copy the slice so later caller-side appends cannot reach stored state.
	batch.Proposals = append([]Proposal(nil), batch.Proposals...)

	s.batchesMu.Lock()
	defer s.batchesMu.Unlock()
	s.batches[batch.ID] = batch
	return batch, nil
}

func (s *MemoryStore) GetProposalBatch(_ context.Context, id uuid.UUID) (ProposalBatch, error) {
	s.batchesMu.RLock()
	defer s.batchesMu.RUnlock()
	batch, ok := s.batches[id]
	if !ok {
		return ProposalBatch{}, ErrBatchNotFound
	}
	return batch, nil
}

func (s *MemoryStore) ListProposalBatches(_ context.Context, userID string, filter BatchFilter) ([]ProposalBatch, error) {
	s.batchesMu.RLock()
	defer s.batchesMu.RUnlock()

	batches := make([]ProposalBatch, 0, len(s.batches))
	for _, batch := range s.batches {
		if userID != "" && batch.UserID != userID {
			continue
		}
		if filter.Status != "" && batch.Status != filter.Status {
			continue
		}
		batches = append(batches, batch)
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].CreatedAt.After(batches[j].CreatedAt) })

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	if len(batches) > limit {
		batches = batches[:limit]
	}
	return batches, nil
}

func (s *MemoryStore) UpdateProposalBatchStatus(_ context.Context, id uuid.UUID, status ProposalStatus) error {
	s.batchesMu.Lock()
	defer s.batchesMu.Unlock()
	batch, ok := s.batches[id]
	if !ok {
		return ErrBatchNotFound
	}
	batch.Status = status
	s.batches[id] = batch
	return nil
}

func (s *MemoryStore) SaveApprovedAction(_ context.Context, action ApprovedAction) (ApprovedAction, error) {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}

	s.actionsMu.Lock()
	defer s.actionsMu.Unlock()
	s.actions = append(s.actions, action)
	return action, nil
}

func (s *MemoryStore) ListApprovedActions(_ context.Context, userID string, limit int) ([]ApprovedAction, error) {
	s.actionsMu.RLock()
	defer s.actionsMu.RUnlock()

	actions := make([]ApprovedAction, 0, len(s.actions))
	for _, action := range s.actions {
		if userID != "" && action.UserID != userID {
			continue
		}
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].CreatedAt.After(actions[j].CreatedAt) })

	if limit <= 0 {
		limit = defaultBatchLimit
	}
	if len(actions) > limit {
		actions = actions[:limit]
	}
	return actions, nil
}

func (s *MemoryStore) SaveMemoryItem(_ context.Context, item MemoryItem) (MemoryItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.ActiveDay == "" {
		item.ActiveDay = item.CreatedAt.Format("2006-01-02")
	}

	s.memoryMu.Lock()
	defer s.memoryMu.Unlock()
	s.memory[item.ID] = item
	return item, nil
}

func (s *MemoryStore) GetMemoryItems(_ context.Context, userID string, filter MemoryFilter) ([]MemoryItem, error) {
	now := time.Now().UTC()

	s.memoryMu.RLock()
	defer s.memoryMu.RUnlock()

	items := make([]MemoryItem, 0, len(s.memory))
	for _, item := range s.memory {
		if item.UserID != userID {
			continue
		}
		// Expired items are invisible to reads even before cleanup runs.
		if !item.ExpiresAt.IsZero() && item.ExpiresAt.Before(now) {
			continue
		}
		if filter.ActiveDay != "" && item.ActiveDay != filter.ActiveDay {
			continue
		}
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (s *MemoryStore) CleanupExpiredMemory(_ context.Context) (int, error) {
	now := time.Now().UTC()

	s.memoryMu.Lock()
	defer s.memoryMu.Unlock()
	removed := 0
	for id, item := range s.memory {
		if !item.ExpiresAt.IsZero() && item.ExpiresAt.Before(now) {
			delete(s.memory, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) SaveDailySummary(_ context.Context, summary DailySummary) (DailySummary, error) {
	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	s.summariesMu.Lock()
	defer s.summariesMu.Unlock()
	s.summaries[summaryKey(summary.UserID, summary.Date)] = summary
	return summary, nil
}

func (s *MemoryStore) GetDailySummary(_ context.Context, userID, date string) (DailySummary, error) {
	s.summariesMu.RLock()
	defer s.summariesMu.RUnlock()
	summary, ok := s.summaries[summaryKey(userID, date)]
	if !ok {
		return DailySummary{}, ErrSummaryNotFound
	}
	return summary, nil
}

func summaryKey(userID, date string) string {
	return userID + ":" + date
}
