package generation

import (
	"errors"
	"regexp"
	"strings"
)

// QuotaClass is the provider-side classification of a generation error.
type QuotaClass int

const (
	// QuotaOtherError is any failure that is not a rate or quota limit.
	QuotaOtherError QuotaClass = iota
	// QuotaTransientRateLimit clears within the run: per-minute limits,
	// overload, temporary unavailability.
	QuotaTransientRateLimit
	// QuotaDailyExhausted resets on a calendar-day boundary and cannot
	// clear within the run.
	QuotaDailyExhausted
)

// String returns the class name used in logs and metrics.
func (c QuotaClass) String() string {
	switch c {
	case QuotaTransientRateLimit:
		return "transient_rate_limit"
	case QuotaDailyExhausted:
		return "daily_quota_exhausted"
	default:
		return "other_error"
	}
}

// QuotaSignal is implemented by provider errors that carry a structured
// quota classification, such as an HTTP status or an error detail naming
// the violated quota. ok is false when the error carries no such signal.
type QuotaSignal interface {
	QuotaClass() (class QuotaClass, ok bool)
}

var (
	rpdWord = regexp.MustCompile(`\brpd\b`)
	rpmWord = regexp.MustCompile(`\brpm\b`)
)

var transientMarkers = []string{
	"429",
	"resource_exhausted",
	"resource exhausted",
	"quota",
	"rate limit",
	"rate_limit",
	"overload",
	"unavailable",
	"too many requests",
	"limit exceeded",
	"requests per minute",
}

// ClassifyMessage classifies a free-text provider error message. Daily
// phrasing is checked first since it refines the generic quota phrasing.
func ClassifyMessage(msg string) QuotaClass {
	m := strings.ToLower(msg)

	if isDailyMessage(m) {
		return QuotaDailyExhausted
	}
	for _, marker := range transientMarkers {
		if strings.Contains(m, marker) {
			return QuotaTransientRateLimit
		}
	}
	if rpmWord.MatchString(m) {
		return QuotaTransientRateLimit
	}
	return QuotaOtherError
}

func isDailyMessage(m string) bool {
	if strings.Contains(m, "requests per day") || rpdWord.MatchString(m) {
		return true
	}
	if !strings.Contains(m, "quota") {
		return false
	}
	if strings.Contains(m, "day") || strings.Contains(m, "daily") {
		return true
	}
	return strings.Contains(m, "exceed") && strings.Contains(m, "today")
}

// ClassifyError classifies err, preferring a structured QuotaSignal anywhere
// in its chain over the message heuristics.
func ClassifyError(err error) QuotaClass {
	if err == nil {
		return QuotaOtherError
	}

	var sig QuotaSignal
	if errors.As(err, &sig) {
		if class, ok := sig.QuotaClass(); ok {
			return class
		}
	}
	return ClassifyMessage(err.Error())
}
