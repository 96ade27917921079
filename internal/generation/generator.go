package generation

import "context"

// NoContentText is returned when a request carries nothing to summarize.
const NoContentText = "No content available for summary."

// Field is one labelled piece of record content.
type Field struct {
	Label string
	Value string
}

// Request asks for a summary of one record.
type Request struct {
	// SubjectID names the record in the prompt, usually the task name.
	SubjectID string
	Fields    []Field
	// Credential is the provider API key. Empty means no generation.
	Credential string
}

// OutcomeKind tells the caller how a summary was produced.
type OutcomeKind int

const (
	// OutcomeUnknown is the zero value: no summary was produced.
	OutcomeUnknown OutcomeKind = iota
	// OutcomeGenerated carries model-generated text.
	OutcomeGenerated
	// OutcomeFallback carries the request's fields rendered as text.
	OutcomeFallback
	// OutcomeSkipped means the daily quota was already exhausted; no call
	// was made and Text is empty.
	OutcomeSkipped
	// OutcomeNoContent means the request had no labelled fields.
	OutcomeNoContent
)

// String returns the kind name used in logs and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeGenerated:
		return "generated"
	case OutcomeFallback:
		return "fallback"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoContent:
		return "no_content"
	case OutcomeUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Outcome is the result of Engine.Generate.
type Outcome struct {
	Kind OutcomeKind
	Text string
	// Model is the tier that produced the text, for OutcomeGenerated only.
	Model string
	// Attempts counts provider calls across all tiers.
	Attempts int
}

// Call is a single provider invocation.
type Call struct {
	Model           string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
	Credential      string
}

// Provider is the boundary to a concrete text-generation SDK.
type Provider interface {
	// GenerateContent runs one generation call and returns the raw text.
	// An empty string with a nil error means the model declined to answer.
	GenerateContent(ctx context.Context, call Call) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, call Call) (string, error)

// GenerateContent calls f.
func (f ProviderFunc) GenerateContent(ctx context.Context, call Call) (string, error) {
	return f(ctx, call)
}
