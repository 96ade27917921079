// Package generation produces short status summaries through an external
// text-generation provider while respecting the provider's quota signals.
//
// The Engine walks an ordered list of model tiers. Each tier draws from its
// own quota bucket, so a transient rate limit on one tier is answered by a
// few same-tier retries with backoff and then an immediate switch to the
// next tier. A daily quota signal flips the engine's QuotaState, after which
// every later request is skipped without touching the network.
//
// Generation never fails a record: when nothing can be generated the engine
// returns deterministic fallback text built from the request's fields. The
// only error Generate returns is cancellation of its context.
//
// The Provider interface is the boundary to the concrete SDK; see
// internal/platform/gemini for the Gemini implementation.
package generation
