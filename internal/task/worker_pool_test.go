package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskQueue implements TaskQueueReader for testing
type mockTaskQueue struct {
	ch chan Task
}

func newMockTaskQueue() *mockTaskQueue {
	return &mockTaskQueue{
		ch: make(chan Task, 10),
	}
}

func (m *mockTaskQueue) GetChannel() <-chan Task {
	return m.ch
}

func TestNewWorkerPool(t *testing.T) {
	logger := setupTestLogger()
	taskQueue := newMockTaskQueue()
	config := WorkerPoolConfig{
		WorkerCount: 5,
	}

	pool := NewWorkerPool(taskQueue, config, logger)

	assert.NotNil(t, pool)
	assert.Equal(t, 5, pool.workerCount)
	assert.Equal(t, taskQueue, pool.taskQueue)
	assert.NotNil(t, pool.logger)

	// Test with invalid worker count (should default to 1)
	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 0}, logger)
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: -5}, logger)
	assert.Equal(t, 1, pool.workerCount)
}

func TestWorkerPool_DrainsQueue(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(20, logger)

	var executed atomic.Int32
	for i := 0; i < 20; i++ {
		task := newMockTask()
		task.execFn = func(ctx context.Context) error {
			executed.Add(1)
			return nil
		}
		require.NoError(t, queue.Enqueue(task))
	}
	queue.Close()

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 4}, logger)
	pool.Start(context.Background())
	pool.Wait()

	assert.Equal(t, int32(20), executed.Load())
	assert.Equal(t, int64(20), pool.Completed())
	assert.Equal(t, int64(0), pool.Failed())
}

func TestWorkerPool_RunsConcurrently(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(4, logger)

	// Every task blocks until all four are running at once.
	var started sync.WaitGroup
	started.Add(4)
	release := make(chan struct{})
	for i := 0; i < 4; i++ {
		task := newMockTask()
		task.execFn = func(ctx context.Context) error {
			started.Done()
			<-release
			return nil
		}
		require.NoError(t, queue.Enqueue(task))
	}
	queue.Close()

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 4}, logger)
	pool.Start(context.Background())

	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	select {
	case <-allStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not run concurrently")
	}
	close(release)
	pool.Wait()

	assert.Equal(t, int64(4), pool.Completed())
}

func TestWorkerPool_CountsFailures(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(3, logger)

	failing := newMockTask()
	failing.execFn = func(ctx context.Context) error { return errors.New("boom") }
	require.NoError(t, queue.Enqueue(failing))
	require.NoError(t, queue.Enqueue(newMockTask()))
	queue.Close()

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, logger)
	pool.Start(context.Background())
	pool.Wait()

	assert.Equal(t, int64(1), pool.Completed())
	assert.Equal(t, int64(1), pool.Failed())
}

func TestWorkerPool_IdleQueueStopsOnCancel(t *testing.T) {
	logger := setupTestLogger()
	taskQueue := newMockTaskQueue()

	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(taskQueue, WorkerPoolConfig{WorkerCount: 3}, logger)
	pool.Start(ctx)

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not return with an open, empty queue")
	}
}

func TestWorkerPool_ContextCancellation(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(10, logger)

	ctx, cancel := context.WithCancel(context.Background())

	first := newMockTask()
	first.execFn = func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	}
	require.NoError(t, queue.Enqueue(first))

	var laterRan atomic.Bool
	for i := 0; i < 5; i++ {
		task := newMockTask()
		task.execFn = func(ctx context.Context) error {
			laterRan.Store(true)
			return nil
		}
		require.NoError(t, queue.Enqueue(task))
	}
	queue.Close()

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, logger)
	pool.Start(ctx)
	pool.Wait()

	assert.False(t, laterRan.Load(), "no task starts after cancellation")
	assert.Equal(t, int64(1), pool.Failed())
}
