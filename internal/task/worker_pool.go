package task

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue until the queue is drained or the context ends.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// cancel stops the workers; set by Start
	cancel context.CancelFunc

	logger *slog.Logger

	completed atomic.Int64
	failed    atomic.Int64
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		logger:      logger,
	}
}

// Start launches the workers. They stop when the queue is closed and
// drained, or when ctx is cancelled.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.logger.Debug("starting worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
}

// Completed returns the number of tasks that finished without error.
func (p *WorkerPool) Completed() int64 { return p.completed.Load() }

// Failed returns the number of tasks whose Execute returned an error.
func (p *WorkerPool) Failed() int64 { return p.failed.Load() }

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	tasks := p.taskQueue.GetChannel()
	for {
		// Cancellation wins over a non-empty queue.
		if ctx.Err() != nil {
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		}

		select {
		case <-ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-tasks:
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			p.processTask(ctx, task, id)
		}
	}
}

// processTask handles execution of a single task
func (p *WorkerPool) processTask(ctx context.Context, task Task, workerID int) {
	logger := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	logger.Debug("processing task")

	if err := task.Execute(ctx); err != nil {
		p.failed.Add(1)
		if ctx.Err() != nil {
			logger.Debug("task interrupted", "error", err)
		} else {
			logger.Error("task execution failed", "error", err)
		}
		return
	}

	p.completed.Add(1)
	logger.Debug("task completed successfully")
}
