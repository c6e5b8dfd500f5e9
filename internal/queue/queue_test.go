package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

func TestEnqueueWithRetrySucceedsFirstTry(t *testing.T) {
	q := new(MockQueue)
	q.On("Enqueue", mock.Anything, mock.AnythingOfType("queue.Task")).Return(nil).Once()

	err := EnqueueWithRetry(context.Background(), q, Task{Type: TaskTypeExtract}, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q.AssertExpectations(t)
}

func TestEnqueueWithRetryRecovers(t *testing.T) {
	q := new(MockQueue)
	q.On("Enqueue", mock.Anything, mock.AnythingOfType("queue.Task")).Return(errors.New("nats down")).Once()
	q.On("Enqueue", mock.Anything, mock.AnythingOfType("queue.Task")).Return(nil).Once()

	err := EnqueueWithRetry(context.Background(), q, Task{Type: TaskTypeExtract}, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q.AssertExpectations(t)
}

func TestEnqueueWithRetryExhaustsAttempts(t *testing.T) {
	q := new(MockQueue)
	q.On("Enqueue", mock.Anything, mock.AnythingOfType("queue.Task")).Return(errors.New("nats down")).Times(3)

	err := EnqueueWithRetry(context.Background(), q, Task{Type: TaskTypeExtract}, 3, time.Millisecond)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	q.AssertExpectations(t)
}

func TestEnqueueWithRetryCancelledContext(t *testing.T) {
	q := new(MockQueue)
	q.On("Enqueue", mock.Anything, mock.AnythingOfType("queue.Task")).Return(errors.New("nats down")).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := EnqueueWithRetry(ctx, q, Task{Type: TaskTypeExtract}, 3, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	q.AssertExpectations(t)
}
