// Package backoff computes exponential retry delays with jitter and provides
// a context-aware sleeper. It is shared by the ClickUp fetch client and the
// tiered generation engine so both retry loops wait the same way.
package backoff
