// Package redact strips credentials and personal data from strings before
// they are logged or embedded in error messages. API responses and provider
// error messages can echo request headers, query strings, and task content,
// so every body the call layer logs passes through here first.
package redact

import (
	"regexp"
	"unicode/utf8"
)

// Placeholders substituted for each kind of sensitive value.
const (
	RedactionPlaceholder     = "[REDACTED]"
	RedactedKeyPlaceholder   = "[REDACTED_KEY]"
	RedactedTokenPlaceholder = "[REDACTED_TOKEN]"
	RedactedEmailPlaceholder = "[REDACTED_EMAIL]"
)

// MaxLength bounds the output of Truncate.
const MaxLength = 512

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Order matters: specific token shapes run before the generic key=value rule
// so they keep their more descriptive placeholder.
var rules = []rule{
	// ClickUp personal API tokens
	{regexp.MustCompile(`pk_[0-9]+_[A-Za-z0-9]{16,}`), RedactedTokenPlaceholder},
	// Google API keys
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{30,}`), RedactedKeyPlaceholder},
	// Authorization header values
	{regexp.MustCompile(`(?i)(authorization|bearer)(["'\s:=]+)[A-Za-z0-9_\-.~+/=]{8,}`), "${1}${2}" + RedactedTokenPlaceholder},
	// key=value credentials, including ?key= query parameters
	{regexp.MustCompile(`(?i)\b(api[_-]?key|key|token|secret|password)(["'\s]*[:=]["'\s]*)[A-Za-z0-9_\-.~+/]{8,}`), "${1}${2}" + RedactedKeyPlaceholder},
	// email addresses in task content
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Truncate redacts s and cuts it to at most MaxLength bytes without splitting
// a UTF-8 sequence. It is meant for response bodies headed for logs.
func Truncate(s string) string {
	s = String(s)
	if len(s) <= MaxLength {
		return s
	}

	cut := MaxLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}
