// Package gemini implements generation.Provider on top of Google's Gemini
// API through the google.golang.org/genai SDK.
//
// The Provider keeps one SDK client per credential and issues exactly one
// GenerateContent call per Provider call; retries and tier escalation belong
// to generation.Engine. SDK failures are returned as *ProviderError, which
// reads the structured API error (HTTP code, status, QuotaFailure details)
// so the engine can tell a per-minute rate limit from an exhausted daily
// quota without parsing message text.
package gemini
