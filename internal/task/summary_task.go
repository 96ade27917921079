package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-extractor/internal/generation"
)

// Summarizer produces a summary for one generation request.
// *generation.Engine satisfies it.
type Summarizer interface {
	Generate(ctx context.Context, req generation.Request) (generation.Outcome, error)
}

// SummaryTask generates the summary of one extracted record.
type SummaryTask struct {
	id         uuid.UUID
	summarizer Summarizer
	request    generation.Request

	mu      sync.Mutex
	status  TaskStatus
	outcome generation.Outcome
}

// NewSummaryTask creates a pending task for req.
func NewSummaryTask(summarizer Summarizer, req generation.Request) (*SummaryTask, error) {
	if summarizer == nil {
		return nil, fmt.Errorf("summarizer cannot be nil")
	}
	return &SummaryTask{
		id:         uuid.New(),
		summarizer: summarizer,
		request:    req,
		status:     TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *SummaryTask) ID() uuid.UUID { return t.id }

// Type returns TaskTypeSummary
func (t *SummaryTask) Type() string { return TaskTypeSummary }

// Status returns the current task status
func (t *SummaryTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Outcome returns the generated outcome once the task has completed.
func (t *SummaryTask) Outcome() generation.Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome
}

// Execute runs the summarizer. It only fails when ctx is cancelled.
func (t *SummaryTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	out, err := t.summarizer.Generate(ctx, t.request)
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("summary for %q: %w", t.request.SubjectID, err)
	}

	t.mu.Lock()
	t.outcome = out
	t.status = TaskStatusCompleted
	t.mu.Unlock()
	return nil
}

func (t *SummaryTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}
