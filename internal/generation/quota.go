package generation

import "sync"

// QuotaState records whether the provider's daily quota has been exhausted
// during this run. It is owned by one Engine and shared by every goroutine
// calling that engine. Once exhausted it stays exhausted.
type QuotaState struct {
	mu        sync.RWMutex
	exhausted bool
	lastError string
}

// Exhausted reports whether the daily quota has been hit.
func (q *QuotaState) Exhausted() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.exhausted
}

// LastError returns the provider message that exhausted the quota.
func (q *QuotaState) LastError() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.lastError
}

// MarkExhausted flips the state and reports whether this call was the one
// that flipped it. Later calls keep the first recorded message.
func (q *QuotaState) MarkExhausted(msg string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.exhausted {
		return false
	}
	q.exhausted = true
	q.lastError = msg
	return true
}

// Reset clears the state. The engine never calls it; it exists for
// long-lived processes that start a new quota day by hand.
func (q *QuotaState) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.exhausted = false
	q.lastError = ""
}
