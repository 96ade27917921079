package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Errors returned by TaskQueue.Enqueue.
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded queue for one batch of tasks. The producer fills
// it, closes it, and the worker pool drains it; Enqueue never blocks.
// Enqueue and Close may race safely.
type TaskQueue struct {
	mu     sync.Mutex
	closed bool
	tasks  chan Task
	logger *slog.Logger
}

// NewTaskQueue creates a queue holding at most capacity tasks. A capacity
// below one is raised to one.
func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		tasks:  make(chan Task, max(capacity, 1)),
		logger: logger,
	}
}

// Enqueue adds task without blocking. It fails with ErrQueueFull when the
// queue is at capacity and with ErrQueueClosed after Close.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("%w: %d tasks pending", ErrQueueFull, cap(q.tasks))
	}
}

// Close marks the end of the batch. Queued tasks stay readable; once they
// are drained the channel reports closed. Close is idempotent.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
	q.logger.Debug("task queue sealed", "pending", len(q.tasks))
}

// Len is the number of tasks not yet picked up by a worker.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}

// GetChannel is the consumer side of the queue.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}
