package clickup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tags an APIError with the closed set of failures callers
// dispatch on.
type ErrorKind int

const (
	// KindOther fails this call only; the caller skips the record.
	KindOther ErrorKind = iota
	// KindAuthentication aborts the whole batch.
	KindAuthentication
	// KindShardRouting aborts the whole batch: the workspace is served by
	// a different shard than the one the token was routed to.
	KindShardRouting
	// KindTransientExhausted means every attempt hit a transient fault.
	KindTransientExhausted
)

// String returns the kind name used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindShardRouting:
		return "shard_routing"
	case KindTransientExhausted:
		return "transient_exhausted"
	default:
		return "other"
	}
}

// Sentinels for errors.Is matching against an *APIError's kind.
var (
	ErrAuthentication     = errors.New("clickup authentication failed")
	ErrShardRouting       = errors.New("clickup shard routing error")
	ErrOther              = errors.New("clickup api error")
	ErrTransientExhausted = errors.New("clickup transient fault persisted after retries")
)

// ShardCodePrefix marks the provider's workspace-routing error codes.
const ShardCodePrefix = "SHARD_"

// APIError is the single error type returned by Client.Get. The kind is
// decided once at the call boundary; callers branch on it and never
// re-classify.
type APIError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	// Body is the redacted, truncated response body.
	Body string
	// Code is the ECODE field of the error body, if any.
	Code     string
	Attempts int
	// History lists every attempt made for this logical call.
	History []Attempt
	Err     error
}

// Error implements error.
func (e *APIError) Error() string {
	var b strings.Builder

	switch e.Kind {
	case KindAuthentication:
		b.WriteString("API authentication failed, check the ClickUp API key")
	case KindShardRouting:
		fmt.Fprintf(&b, "workspace routing error %s: the workspace is served by a different ClickUp shard; "+
			"verify the workspace name and that the token belongs to it", e.Code)
	case KindTransientExhausted:
		fmt.Fprintf(&b, "transient failure persisted after %d attempts", e.Attempts)
	default:
		b.WriteString("API request failed")
	}

	if e.URL != "" {
		fmt.Fprintf(&b, " (url=%s", e.URL)
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, " status=%d", e.StatusCode)
		}
		if e.Code != "" && e.Kind != KindShardRouting {
			fmt.Fprintf(&b, " code=%s", e.Code)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else if e.Body != "" && e.Kind != KindAuthentication {
		fmt.Fprintf(&b, ": %s", e.Body)
	}

	return b.String()
}

// Unwrap exposes the underlying transport or decode error.
func (e *APIError) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrShardRouting:
		return e.Kind == KindShardRouting
	case ErrOther:
		return e.Kind == KindOther
	case ErrTransientExhausted:
		return e.Kind == KindTransientExhausted
	}
	return false
}

// BatchFatal reports whether the error invalidates every later call, so the
// batch should stop instead of skipping one record.
func (e *APIError) BatchFatal() bool {
	return e.Kind == KindAuthentication || e.Kind == KindShardRouting
}

// IsBatchFatal reports whether err carries a batch-fatal APIError.
func IsBatchFatal(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.BatchFatal()
}
