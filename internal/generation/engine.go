package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-extractor/internal/backoff"
	"github.com/phrazzld/task-extractor/internal/config"
	"github.com/phrazzld/task-extractor/internal/platform/metrics"
	"github.com/phrazzld/task-extractor/internal/redact"
)

const (
	defaultTemperature     float32 = 0.3
	defaultMaxOutputTokens int32   = 150
)

// tierState is a position in the tier walk.
type tierState int

const (
	stateAttempting tierState = iota
	stateBackoff
	stateTierAdvance
	stateExhausted
	stateSucceeded
	stateQuotaExhausted
)

func (s tierState) String() string {
	switch s {
	case stateAttempting:
		return "attempting"
	case stateBackoff:
		return "backoff"
	case stateTierAdvance:
		return "tier_advance"
	case stateExhausted:
		return "exhausted"
	case stateSucceeded:
		return "succeeded"
	case stateQuotaExhausted:
		return "quota_exhausted"
	default:
		return "unknown"
	}
}

// callResult is what one provider call produced, as seen by the walk.
type callResult int

const (
	resultText callResult = iota
	resultEmpty
	resultTransient
	resultOther
	resultDaily
)

func (r callResult) String() string {
	switch r {
	case resultText:
		return "success"
	case resultEmpty:
		return "empty"
	case resultTransient:
		return "transient"
	case resultDaily:
		return "daily_quota"
	default:
		return "error"
	}
}

// nextState decides where the walk goes after a call on tier (0-based) whose
// attempt (0-based) produced r. Only a transient fault with attempts left on
// the same tier leads to a backoff; every other failure moves to the next
// tier at once, or ends the walk on the last tier.
func nextState(r callResult, attempt, maxAttempts, tier, tiers int) tierState {
	switch r {
	case resultText:
		return stateSucceeded
	case resultDaily:
		return stateQuotaExhausted
	case resultTransient:
		if attempt+1 < maxAttempts {
			return stateBackoff
		}
	}
	if tier+1 < tiers {
		return stateTierAdvance
	}
	return stateExhausted
}

// Engine produces summaries by walking model tiers in order. It is safe for
// concurrent use; all callers share its QuotaState.
type Engine struct {
	models          []string
	temperature     float32
	maxOutputTokens int32
	maxAttempts     int
	baseDelay       time.Duration
	maxDelay        time.Duration

	provider Provider
	quota    *QuotaState
	sleeper  backoff.Sleeper
	rand     backoff.Source
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSleeper replaces the backoff sleeper, mainly for tests.
func WithSleeper(s backoff.Sleeper) Option {
	return func(e *Engine) { e.sleeper = s }
}

// WithRandSource fixes the jitter source.
func WithRandSource(src backoff.Source) Option {
	return func(e *Engine) { e.rand = src }
}

// WithMetrics records attempts and outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Engine over provider. A nil provider is allowed and
// behaves like an unavailable SDK: every request with content falls back.
func NewEngine(cfg config.LLMConfig, provider Provider, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("%w: at least one model tier is required", ErrInvalidConfig)
	}
	for i, m := range cfg.Models {
		if m == "" {
			return nil, fmt.Errorf("%w: model tier %d is empty", ErrInvalidConfig, i)
		}
	}

	e := &Engine{
		models:          append([]string(nil), cfg.Models...),
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		maxAttempts:     cfg.MaxAttempts,
		baseDelay:       cfg.BaseDelay,
		maxDelay:        cfg.MaxDelay,
		provider:        provider,
		quota:           &QuotaState{},
		sleeper:         backoff.ContextSleeper{},
		logger:          logger.With("component", "generation_engine"),
	}

	if e.temperature <= 0 {
		e.temperature = defaultTemperature
	}
	if e.maxOutputTokens <= 0 {
		e.maxOutputTokens = defaultMaxOutputTokens
	}
	if e.maxAttempts < 1 {
		e.maxAttempts = config.DefaultMaxAttempts
	}
	if e.baseDelay <= 0 {
		e.baseDelay = config.DefaultBaseDelay
	}
	if e.maxDelay < e.baseDelay {
		e.maxDelay = config.DefaultMaxDelay
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Quota exposes the engine's quota state so callers can stop scheduling
// work once it is exhausted.
func (e *Engine) Quota() *QuotaState {
	return e.quota
}

// Generate produces a summary for req. It returns an error only when ctx is
// cancelled; every provider failure degrades to a fallback outcome.
func (e *Engine) Generate(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	if e.quota.Exhausted() {
		return e.finish(ctx, req, Outcome{Kind: OutcomeSkipped}), nil
	}

	block := fieldBlock(req.Fields)
	if block == "" {
		return e.finish(ctx, req, Outcome{Kind: OutcomeNoContent, Text: NoContentText}), nil
	}

	if req.Credential == "" || e.provider == nil {
		return e.finish(ctx, req, Outcome{Kind: OutcomeFallback, Text: block}), nil
	}

	call := Call{
		Prompt:          buildPrompt(req.SubjectID, block),
		Temperature:     e.temperature,
		MaxOutputTokens: e.maxOutputTokens,
		Credential:      req.Credential,
	}

	var (
		tier, attempt, calls int
		text                 string
		lastErr              error
	)

	st := stateAttempting
	for {
		switch st {
		case stateAttempting:
			// Another caller may have hit the daily limit while this
			// request was backing off.
			if calls > 0 && e.quota.Exhausted() {
				return e.finish(ctx, req, Outcome{Kind: OutcomeFallback, Text: block, Attempts: calls}), nil
			}

			call.Model = e.models[tier]
			raw, err := e.provider.GenerateContent(ctx, call)
			calls++
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{}, ctxErr
			}

			r := e.judge(raw, err)
			e.metrics.GenerationAttempt(call.Model, r.String())
			if r == resultText {
				text = normalize(raw)
			} else {
				lastErr = err
				e.logger.WarnContext(ctx, "generation attempt failed",
					"subject", req.SubjectID,
					"model", call.Model,
					"attempt", attempt+1,
					"max_attempts", e.maxAttempts,
					"result", r.String(),
					"error", redact.Error(err))
			}
			st = nextState(r, attempt, e.maxAttempts, tier, len(e.models))

		case stateBackoff:
			delay := backoff.Compute(attempt, e.baseDelay, e.maxDelay, e.rand)
			e.logger.InfoContext(ctx, "rate limited, retrying same model",
				"subject", req.SubjectID,
				"model", e.models[tier],
				"delay", delay)
			if err := e.sleeper.Sleep(ctx, delay); err != nil {
				return Outcome{}, err
			}
			attempt++
			st = stateAttempting

		case stateTierAdvance:
			e.logger.InfoContext(ctx, "switching model tier",
				"subject", req.SubjectID,
				"from", e.models[tier],
				"to", e.models[tier+1])
			tier++
			attempt = 0
			st = stateAttempting

		case stateSucceeded:
			return e.finish(ctx, req, Outcome{
				Kind:     OutcomeGenerated,
				Text:     text,
				Model:    e.models[tier],
				Attempts: calls,
			}), nil

		case stateQuotaExhausted:
			msg := redact.Error(lastErr)
			if e.quota.MarkExhausted(msg) {
				e.metrics.QuotaExhausted()
				e.logger.ErrorContext(ctx, "daily generation quota exhausted, skipping summaries for the rest of the run",
					"model", e.models[tier],
					"error", msg)
			}
			return e.finish(ctx, req, Outcome{Kind: OutcomeFallback, Text: block, Attempts: calls}), nil

		case stateExhausted:
			e.logger.WarnContext(ctx, "all model tiers failed, using fallback text",
				"subject", req.SubjectID,
				"attempts", calls,
				"error", redact.Error(lastErr))
			return e.finish(ctx, req, Outcome{Kind: OutcomeFallback, Text: block, Attempts: calls}), nil

		default:
			return e.finish(ctx, req, Outcome{Kind: OutcomeFallback, Text: block, Attempts: calls}), nil
		}
	}
}

// judge maps a provider return onto the walk's result alphabet.
func (e *Engine) judge(raw string, err error) callResult {
	if err != nil {
		switch ClassifyError(err) {
		case QuotaDailyExhausted:
			return resultDaily
		case QuotaTransientRateLimit:
			return resultTransient
		default:
			return resultOther
		}
	}
	if normalize(raw) == "" {
		return resultEmpty
	}
	return resultText
}

func (e *Engine) finish(ctx context.Context, req Request, out Outcome) Outcome {
	e.metrics.GenerationOutcome(out.Kind.String())
	e.logger.DebugContext(ctx, "generation finished",
		"subject", req.SubjectID,
		"kind", out.Kind.String(),
		"model", out.Model,
		"attempts", out.Attempts)
	return out
}
