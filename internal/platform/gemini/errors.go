package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/task-extractor/internal/generation"
	"google.golang.org/genai"
)

const quotaFailureType = "type.googleapis.com/google.rpc.QuotaFailure"

// ProviderError wraps a failed SDK call with the model it was made against.
// It implements generation.QuotaSignal.
type ProviderError struct {
	Model string
	Err   error
}

// Error implements error.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("gemini %s: %v", e.Model, e.Err)
}

// Unwrap returns the SDK error.
func (e *ProviderError) Unwrap() error { return e.Err }

// QuotaClass classifies the wrapped error from the SDK's structured API
// error. ok is false when the SDK gave no API error, as on a transport
// failure, or when a server error carries no quota information; the
// message heuristics decide those.
func (e *ProviderError) QuotaClass() (generation.QuotaClass, bool) {
	apiErr, ok := asAPIError(e.Err)
	if !ok {
		return generation.QuotaOtherError, false
	}
	return classifyAPIError(apiErr)
}

// asAPIError finds a genai.APIError in err's chain, whether it was returned
// by value or by pointer.
func asAPIError(err error) (genai.APIError, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return genai.APIError{}, false
}

// classifyAPIError returns the class the API error settles, or ok false
// when it carries no verdict and the message heuristics must decide.
func classifyAPIError(apiErr genai.APIError) (generation.QuotaClass, bool) {
	switch quotaScope(apiErr.Details) {
	case "day":
		return generation.QuotaDailyExhausted, true
	case "minute":
		return generation.QuotaTransientRateLimit, true
	}

	status := strings.ToUpper(apiErr.Status)
	switch {
	case apiErr.Code == http.StatusTooManyRequests, status == "RESOURCE_EXHAUSTED":
		// A 429 without violation details still may be a daily limit; only
		// the message says so.
		if generation.ClassifyMessage(apiErr.Message) == generation.QuotaDailyExhausted {
			return generation.QuotaDailyExhausted, true
		}
		return generation.QuotaTransientRateLimit, true
	case apiErr.Code == http.StatusServiceUnavailable, status == "UNAVAILABLE":
		return generation.QuotaTransientRateLimit, true
	case apiErr.Code >= 400 && apiErr.Code < 500:
		// A rejected request is not retried, but a daily quota reported
		// under another client error code still ends the run's summaries.
		if generation.ClassifyMessage(apiErr.Message) == generation.QuotaDailyExhausted {
			return generation.QuotaDailyExhausted, true
		}
		return generation.QuotaOtherError, true
	default:
		return generation.QuotaOtherError, false
	}
}

// quotaScope reads the QuotaFailure violations of an error's details and
// returns "day" if any violated quota is per day, "minute" if any is per
// minute, or "" when there are none.
func quotaScope(details []map[string]any) string {
	scope := ""
	for _, d := range details {
		if t, _ := d["@type"].(string); t != quotaFailureType {
			continue
		}
		violations, _ := d["violations"].([]any)
		for _, raw := range violations {
			v, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			id, _ := v["quotaId"].(string)
			metric, _ := v["quotaMetric"].(string)
			switch {
			case strings.Contains(id, "PerDay"):
				return "day"
			case strings.Contains(id, "PerMinute") || strings.Contains(metric, "per_minute"):
				scope = "minute"
			}
		}
	}
	return scope
}
