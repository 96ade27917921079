package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-extractor/internal/clickup"
	"github.com/phrazzld/task-extractor/internal/config"
	"github.com/phrazzld/task-extractor/internal/generation"
	"github.com/phrazzld/task-extractor/internal/platform/metrics"
	"github.com/phrazzld/task-extractor/internal/task"
)

// Errors returned when the configured hierarchy cannot be resolved.
var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrSpaceNotFound     = errors.New("space not found")
)

// TaskSource is the subset of the ClickUp client the extractor walks.
// *clickup.Client satisfies it.
type TaskSource interface {
	Teams(ctx context.Context) ([]clickup.Team, error)
	Spaces(ctx context.Context, teamID string) ([]clickup.Space, error)
	Folders(ctx context.Context, spaceID string) ([]clickup.Folder, error)
	FolderLists(ctx context.Context, folderID string) ([]clickup.List, error)
	SpaceLists(ctx context.Context, spaceID string) ([]clickup.List, error)
	Tasks(ctx context.Context, listID string, includeArchived bool) ([]clickup.Task, error)
	ListDetail(ctx context.Context, listID string) (*clickup.List, error)
}

// quotaHolder is implemented by summarizers that expose their quota state.
type quotaHolder interface {
	Quota() *generation.QuotaState
}

// Report summarizes one run.
type Report struct {
	Workspace    string
	Space        string
	Lists        int
	ListsSkipped int
	TasksFetched int
	Filtered     int
	Records      int
	// Outcomes counts summary outcome kinds by name.
	Outcomes map[string]int
	// SummariesFailed counts summary tasks that returned an error.
	SummariesFailed int
	QuotaExhausted  bool
	Duration        time.Duration
}

// Extractor runs one extraction.
type Extractor struct {
	cfg    config.ExtractConfig
	source TaskSource
	sink   Sink

	summarizer task.Summarizer
	credential string

	metrics  *metrics.Metrics
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithSummarizer enables notes enrichment through s, authenticating with
// credential.
func WithSummarizer(s task.Summarizer, credential string) Option {
	return func(e *Extractor) {
		e.summarizer = s
		e.credential = credential
	}
}

// WithMetrics records record dispositions on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) { e.metrics = m }
}

// WithClock fixes the time used by the date filter and due-date rendering.
func WithClock(now func() time.Time, loc *time.Location) Option {
	return func(e *Extractor) {
		e.now = now
		e.location = loc
	}
}

// New creates an Extractor.
func New(cfg config.ExtractConfig, source TaskSource, sink Sink, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if source == nil {
		return nil, errors.New("task source cannot be nil")
	}
	if sink == nil {
		return nil, errors.New("sink cannot be nil")
	}

	e := &Extractor{
		cfg:      cfg,
		source:   source,
		sink:     sink,
		now:      time.Now,
		location: time.Local,
		logger:   logger.With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.Concurrency < 1 {
		e.cfg.Concurrency = 1
	}
	return e, nil
}

// Run extracts every matching task in the configured space and writes the
// records to the sink. It returns an error when the hierarchy cannot be
// resolved, on a batch-fatal API error, on a sink failure, or when ctx is
// cancelled. The report is returned in every case.
func (e *Extractor) Run(ctx context.Context) (*Report, error) {
	started := e.now()
	report := &Report{
		Workspace: e.cfg.Workspace,
		Space:     e.cfg.Space,
		Outcomes:  make(map[string]int),
	}
	defer func() { report.Duration = e.now().Sub(started) }()

	spaceID, err := e.resolveSpace(ctx)
	if err != nil {
		return report, err
	}

	lists, err := e.gatherLists(ctx, spaceID, report)
	if err != nil {
		return report, err
	}
	report.Lists = len(lists)
	e.logger.InfoContext(ctx, "lists gathered", "count", len(lists))

	records, err := e.collect(ctx, lists, report)
	if err != nil {
		return report, err
	}

	if e.summarizer != nil && len(records) > 0 {
		if err := e.enrich(ctx, records, report); err != nil {
			return report, err
		}
	}

	for i := range records {
		if err := e.sink.Write(records[i]); err != nil {
			return report, err
		}
		report.Records++
		e.metrics.Record("written")
	}

	e.logger.InfoContext(ctx, "extraction finished",
		"lists", report.Lists,
		"lists_skipped", report.ListsSkipped,
		"tasks_fetched", report.TasksFetched,
		"filtered", report.Filtered,
		"records", report.Records)
	return report, nil
}

func (e *Extractor) resolveSpace(ctx context.Context) (string, error) {
	teams, err := e.source.Teams(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list workspaces: %w", err)
	}
	var teamID string
	for _, t := range teams {
		if t.Name == e.cfg.Workspace {
			teamID = t.ID
			break
		}
	}
	if teamID == "" {
		return "", fmt.Errorf("%w: %q", ErrWorkspaceNotFound, e.cfg.Workspace)
	}

	spaces, err := e.source.Spaces(ctx, teamID)
	if err != nil {
		return "", fmt.Errorf("failed to list spaces: %w", err)
	}
	for _, s := range spaces {
		if s.Name == e.cfg.Space {
			e.logger.InfoContext(ctx, "space resolved", "workspace_id", teamID, "space_id", s.ID)
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q in workspace %q", ErrSpaceNotFound, e.cfg.Space, e.cfg.Workspace)
}

// gatherLists returns the lists of every folder followed by the folderless
// lists of the space.
func (e *Extractor) gatherLists(ctx context.Context, spaceID string, report *Report) ([]clickup.List, error) {
	var lists []clickup.List

	folders, err := e.source.Folders(ctx, spaceID)
	if err != nil {
		if stop := e.skippable(ctx, err, "failed to list folders", "space_id", spaceID); stop != nil {
			return nil, stop
		}
	}
	for _, f := range folders {
		folderLists, err := e.source.FolderLists(ctx, f.ID)
		if err != nil {
			if stop := e.skippable(ctx, err, "failed to list folder lists", "folder", f.Name); stop != nil {
				return nil, stop
			}
			report.ListsSkipped++
			continue
		}
		lists = append(lists, folderLists...)
	}

	spaceLists, err := e.source.SpaceLists(ctx, spaceID)
	if err != nil {
		if stop := e.skippable(ctx, err, "failed to list folderless lists", "space_id", spaceID); stop != nil {
			return nil, stop
		}
	}
	return append(lists, spaceLists...), nil
}

// collect fetches, filters and maps the tasks of every list.
func (e *Extractor) collect(ctx context.Context, lists []clickup.List, report *Report) ([]Record, error) {
	filter := newTaskFilter(e.cfg.IncludeCompleted, e.cfg.ExcludeStatuses, e.cfg.DateFilter, e.now())
	fieldCache := make(map[string]map[string]clickup.CustomFieldDef)
	var records []Record

	for _, list := range lists {
		tasks, err := e.source.Tasks(ctx, list.ID, e.cfg.IncludeCompleted)
		if err != nil {
			if stop := e.skippable(ctx, err, "failed to fetch tasks, skipping list", "list", list.Name); stop != nil {
				return nil, stop
			}
			report.ListsSkipped++
			continue
		}
		report.TasksFetched += len(tasks)

		defs, err := e.fieldDefs(ctx, list, fieldCache)
		if err != nil {
			return nil, err
		}

		kept := 0
		for _, t := range tasks {
			if ok, reason := filter.keep(t); !ok {
				report.Filtered++
				e.metrics.Record("filtered")
				e.logger.DebugContext(ctx, "task filtered", "task_id", t.ID, "reason", reason)
				continue
			}
			records = append(records, buildRecord(t, list.Name, defs, e.location))
			kept++
		}
		e.logger.InfoContext(ctx, "list processed", "list", list.Name, "tasks", len(tasks), "kept", kept)
	}
	return records, nil
}

// fieldDefs returns the custom field definitions of list, fetching them once
// per list. A failed fetch leaves the list's custom columns empty.
func (e *Extractor) fieldDefs(
	ctx context.Context,
	list clickup.List,
	cache map[string]map[string]clickup.CustomFieldDef,
) (map[string]clickup.CustomFieldDef, error) {
	if defs, ok := cache[list.ID]; ok {
		return defs, nil
	}

	fields := list.CustomFields
	if len(fields) == 0 {
		detail, err := e.source.ListDetail(ctx, list.ID)
		if err != nil {
			if stop := e.skippable(ctx, err, "failed to fetch custom fields", "list", list.Name); stop != nil {
				return nil, stop
			}
		} else {
			fields = detail.CustomFields
		}
	}

	defs := make(map[string]clickup.CustomFieldDef, len(fields))
	for _, f := range fields {
		defs[f.ID] = f
	}
	cache[list.ID] = defs
	return defs, nil
}

// skippable logs a per-call failure and returns nil when the run can go on,
// or the error that must stop it.
func (e *Extractor) skippable(ctx context.Context, err error, msg string, args ...any) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if clickup.IsBatchFatal(err) {
		return err
	}
	e.logger.WarnContext(ctx, msg, append(args, "error", err)...)
	return nil
}

// enrich fills each record's notes through the worker pool. All workers
// share the summarizer, so a daily quota hit by one stops the others.
func (e *Extractor) enrich(ctx context.Context, records []Record, report *Report) error {
	queue := task.NewTaskQueue(len(records), e.logger)
	tasks := make([]*task.SummaryTask, len(records))

	for i := range records {
		st, err := task.NewSummaryTask(e.summarizer, records[i].summaryRequest(e.credential))
		if err != nil {
			return err
		}
		tasks[i] = st
		if err := queue.Enqueue(st); err != nil {
			return fmt.Errorf("failed to schedule summary for %q: %w", records[i].Task, err)
		}
	}
	queue.Close()
	e.logger.InfoContext(ctx, "summaries scheduled", "queued", queue.Len(), "workers", e.cfg.Concurrency)

	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{WorkerCount: e.cfg.Concurrency}, e.logger)
	pool.Start(ctx)
	pool.Wait()
	report.SummariesFailed = int(pool.Failed())

	if err := ctx.Err(); err != nil {
		e.logger.WarnContext(ctx, "enrichment interrupted",
			"completed", pool.Completed(),
			"interrupted", pool.Failed(),
			"not_started", queue.Len())
		return err
	}

	for i, st := range tasks {
		out := st.Outcome()
		records[i].Notes = out.Text
		records[i].NotesKind = out.Kind.String()
		report.Outcomes[out.Kind.String()]++
	}

	if q, ok := e.summarizer.(quotaHolder); ok && q.Quota().Exhausted() {
		report.QuotaExhausted = true
		e.logger.WarnContext(ctx, "daily generation quota exhausted during run",
			"skipped", report.Outcomes[generation.OutcomeSkipped.String()],
			"error", q.Quota().LastError())
	}
	return nil
}
