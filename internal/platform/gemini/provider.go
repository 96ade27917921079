package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/phrazzld/task-extractor/internal/generation"
	"google.golang.org/genai"
)

// ContentGenerator is the slice of the SDK the provider uses. *genai.Models
// satisfies it.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// ClientFactory builds a content generator for one credential.
type ClientFactory func(ctx context.Context, apiKey string) (ContentGenerator, error)

// Provider implements generation.Provider using the Gemini API.
type Provider struct {
	logger  *slog.Logger
	factory ClientFactory

	mu      sync.Mutex
	clients map[string]ContentGenerator
}

// Option customizes a Provider.
type Option func(*Provider)

// WithClientFactory replaces the SDK client constructor, mainly for tests.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Provider) { p.factory = f }
}

// NewProvider creates a Provider. SDK clients are created lazily, one per
// credential, on first use.
func NewProvider(logger *slog.Logger, opts ...Option) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	p := &Provider{
		logger:  logger.With("component", "gemini_provider"),
		factory: newSDKClient,
		clients: make(map[string]ContentGenerator),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func newSDKClient(ctx context.Context, apiKey string) (ContentGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// GenerateContent implements generation.Provider with a single SDK call.
func (p *Provider) GenerateContent(ctx context.Context, call generation.Call) (string, error) {
	if call.Credential == "" {
		return "", fmt.Errorf("%w: credential cannot be empty", generation.ErrInvalidConfig)
	}
	if call.Model == "" {
		return "", fmt.Errorf("%w: model cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := p.client(ctx, call.Credential)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(call.Temperature),
		MaxOutputTokens: call.MaxOutputTokens,
	}

	resp, err := client.GenerateContent(ctx, call.Model, genai.Text(call.Prompt), cfg)
	if err != nil {
		return "", &ProviderError{Model: call.Model, Err: err}
	}

	text := responseText(resp)
	if text == "" {
		p.logger.DebugContext(ctx, "model returned no text", "model", call.Model)
	}
	return text, nil
}

// client returns the cached SDK client for apiKey, creating it if needed.
func (p *Provider) client(ctx context.Context, apiKey string) (ContentGenerator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[apiKey]; ok {
		return c, nil
	}

	c, err := p.factory(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}
	p.clients[apiKey] = c
	p.logger.DebugContext(ctx, "created Gemini client")
	return c, nil
}

// responseText joins the text parts of the first candidate, skipping
// thought parts. It returns "" for blocked or empty responses.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
