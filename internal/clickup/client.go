package clickup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/task-extractor/internal/backoff"
	"github.com/phrazzld/task-extractor/internal/config"
	"github.com/phrazzld/task-extractor/internal/platform/metrics"
	"github.com/phrazzld/task-extractor/internal/redact"
)

// maxErrorBody bounds how much of a failing response is kept for diagnostics.
const maxErrorBody = 1 << 20

// Attempt records one iteration of the retry loop.
type Attempt struct {
	// Index is 0-based.
	Index int
	// Wait is the backoff slept before this attempt.
	Wait       time.Duration
	StatusCode int
	Outcome    string
}

// Client performs GET calls against the ClickUp v2 API, retrying transient
// faults with exponential backoff. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	baseURL     string
	apiKey      string
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration

	httpClient *http.Client
	sleeper    backoff.Sleeper
	rand       backoff.Source
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSleeper replaces the backoff sleeper, mainly for tests.
func WithSleeper(s backoff.Sleeper) Option {
	return func(c *Client) { c.sleeper = s }
}

// WithRandSource fixes the jitter source.
func WithRandSource(src backoff.Source) Option {
	return func(c *Client) { c.rand = src }
}

// WithMetrics records attempts and results on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client from cfg.
func NewClient(cfg config.ClickUpConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key cannot be empty", config.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base url cannot be empty", config.ErrInvalidConfig)
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		maxDelay:    cfg.MaxDelay,
		httpClient:  &http.Client{},
		sleeper:     backoff.ContextSleeper{},
		logger:      logger.With("component", "clickup_client"),
	}

	if c.timeout <= 0 {
		c.timeout = config.DefaultTimeout
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = config.DefaultMaxAttempts
	}
	if c.baseDelay <= 0 {
		c.baseDelay = config.DefaultBaseDelay
	}
	if c.maxDelay < c.baseDelay {
		c.maxDelay = config.DefaultMaxDelay
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// attemptResult is what one HTTP round trip produced.
type attemptResult struct {
	status int
	body   []byte
	code   string
	err    error
}

// Get issues a GET for endpoint (relative to the base URL) and decodes the
// JSON response into out. Failures are always *APIError, except for
// cancellation of ctx, which is returned as ctx.Err().
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	url := c.baseURL + endpoint
	history := make([]Attempt, 0, c.maxAttempts)
	var wait time.Duration

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := c.do(ctx, url)
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := Attempt{Index: attempt, Wait: wait, StatusCode: res.status}

		if res.err == nil && res.status >= 200 && res.status < 300 {
			rec.Outcome = "success"
			if err := json.Unmarshal(res.body, out); err != nil {
				c.metrics.FetchResult(KindOther.String())
				return &APIError{
					Kind:       KindOther,
					URL:        url,
					StatusCode: res.status,
					Body:       redact.Truncate(string(res.body)),
					Attempts:   attempt + 1,
					History:    append(history, rec),
					Err:        fmt.Errorf("invalid JSON response: %w", err),
				}
			}
			c.metrics.FetchResult("success")
			return nil
		}

		class := ClassifyFault(res.status, res.err)
		rec.Outcome = class.String()
		history = append(history, rec)

		apiErr := &APIError{
			URL:        url,
			StatusCode: res.status,
			Body:       redact.Truncate(string(res.body)),
			Code:       res.code,
			Attempts:   attempt + 1,
			History:    history,
			Err:        res.err,
		}

		switch {
		case class == FaultFatalAuth:
			apiErr.Kind = KindAuthentication
			return c.fail(apiErr)
		case strings.HasPrefix(res.code, ShardCodePrefix):
			apiErr.Kind = KindShardRouting
			return c.fail(apiErr)
		case class == FaultFatalOther:
			apiErr.Kind = KindOther
			return c.fail(apiErr)
		}

		if attempt+1 >= c.maxAttempts {
			apiErr.Kind = KindTransientExhausted
			return c.fail(apiErr)
		}

		wait = backoff.Compute(attempt, c.baseDelay, c.maxDelay, c.rand)
		c.metrics.FetchRetry()
		c.logger.WarnContext(ctx, "transient fault, retrying",
			"url", url,
			"status", res.status,
			"error", redact.Error(res.err),
			"attempt", attempt+1,
			"max_attempts", c.maxAttempts,
			"delay", wait)

		if err := c.sleeper.Sleep(ctx, wait); err != nil {
			return err
		}
	}

	// maxAttempts >= 1, so the loop always returns.
	return &APIError{Kind: KindTransientExhausted, URL: url, Attempts: c.maxAttempts, History: history}
}

func (c *Client) fail(apiErr *APIError) error {
	c.metrics.FetchResult(apiErr.Kind.String())
	c.logger.Debug("request failed",
		"url", apiErr.URL,
		"kind", apiErr.Kind.String(),
		"status", apiErr.StatusCode,
		"code", apiErr.Code,
		"attempts", apiErr.Attempts)
	return apiErr
}

// do performs a single attempt bounded by the per-attempt timeout.
func (c *Client) do(ctx context.Context, url string) attemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return attemptResult{err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchAttempt("network", time.Since(start))
		return attemptResult{err: err}
	}
	defer resp.Body.Close()

	var body []byte
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err = io.ReadAll(resp.Body)
	} else {
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	}
	c.metrics.FetchAttempt(strconv.Itoa(resp.StatusCode), time.Since(start))

	if err != nil {
		// No status: the classifier judges the read error itself.
		return attemptResult{err: fmt.Errorf("failed to read response body: %w", err)}
	}

	res := attemptResult{status: resp.StatusCode, body: body}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.code = errorCode(body)
	}
	return res
}

// errorBody is the error envelope the API returns on failures.
type errorBody struct {
	Err   string `json:"err"`
	ECode string `json:"ECODE"`
}

func errorCode(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.ECode
}
