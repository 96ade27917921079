package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-extractor/internal/clickup"
	"github.com/phrazzld/task-extractor/internal/config"
	"github.com/phrazzld/task-extractor/internal/extract"
	"github.com/phrazzld/task-extractor/internal/generation"
	"github.com/phrazzld/task-extractor/internal/platform/gemini"
	"github.com/phrazzld/task-extractor/internal/platform/logger"
	"github.com/phrazzld/task-extractor/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

// shutdownTimeout bounds the ops server shutdown.
const shutdownTimeout = 5 * time.Second

// application holds the dependencies of one run.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	registry *prometheus.Registry
	server   *metrics.Server

	client     *clickup.Client
	summarizer *generation.Engine
}

// newApplication wires the run's dependencies from cfg.
func newApplication(cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   log,
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var err error
	app.metrics, err = metrics.New(app.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	app.client, err = clickup.NewClient(cfg.ClickUp, log, clickup.WithMetrics(app.metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create clickup client: %w", err)
	}

	if cfg.LLM.Enabled {
		if cfg.LLM.GeminiAPIKey == "" {
			log.Warn("summaries enabled without a gemini api key, notes will use the fallback text")
		}
		provider, err := gemini.NewProvider(log)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini provider: %w", err)
		}
		app.summarizer, err = generation.NewEngine(cfg.LLM, provider, log, generation.WithMetrics(app.metrics))
		if err != nil {
			return nil, fmt.Errorf("failed to create summary engine: %w", err)
		}
		log.Info("summary engine initialized", "models", cfg.LLM.Models)
	}

	if cfg.Metrics.Addr != "" {
		app.server = metrics.NewServer(cfg.Metrics.Addr, app.registry, log)
	}

	return app, nil
}

// extractRecords runs one extraction into the configured output.
func (app *application) extractRecords(ctx context.Context, stdout io.Writer) (*extract.Report, error) {
	sink, err := extract.OpenSink(app.config.Extract.Output, stdout)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			app.logger.Error("failed to close output", "error", err)
		}
	}()

	opts := []extract.Option{extract.WithMetrics(app.metrics)}
	if app.summarizer != nil {
		opts = append(opts, extract.WithSummarizer(app.summarizer, app.config.LLM.GeminiAPIKey))
	}

	ex, err := extract.New(app.config.Extract, app.client, sink, app.logger, opts...)
	if err != nil {
		return nil, err
	}
	return ex.Run(ctx)
}

// cleanup stops the ops server if one is running.
func (app *application) cleanup() {
	if app.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("metrics server shutdown failed", "error", err)
	}
}

// run loads configuration, sets up logging and performs one extraction.
func run(ctx context.Context, v *viper.Viper, configFile string, stdout io.Writer) error {
	cfg, err := config.LoadWith(v, configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Log, nil)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log = log.With("run_id", uuid.NewString())

	log.Info("configuration loaded",
		"workspace", cfg.Extract.Workspace,
		"space", cfg.Extract.Space,
		"date_filter", cfg.Extract.DateFilter,
		"include_completed", cfg.Extract.IncludeCompleted,
		"summaries", cfg.LLM.Enabled,
		"output", cfg.Extract.Output)

	app, err := newApplication(cfg, log)
	if err != nil {
		return err
	}
	defer app.cleanup()

	if app.server != nil {
		app.server.Start()
	}

	report, err := app.extractRecords(ctx, stdout)
	if report != nil {
		log.Info("run report",
			"lists", report.Lists,
			"lists_skipped", report.ListsSkipped,
			"tasks_fetched", report.TasksFetched,
			"filtered", report.Filtered,
			"records", report.Records,
			"outcomes", report.Outcomes,
			"summaries_failed", report.SummariesFailed,
			"quota_exhausted", report.QuotaExhausted,
			"duration", report.Duration)
	}
	if err != nil {
		log.Error("extraction failed", "error", err)
		return err
	}
	return nil
}
