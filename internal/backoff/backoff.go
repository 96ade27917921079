package backoff

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// JitterFraction is the upper bound of the random extra wait, expressed as a
// fraction of the clamped exponential delay.
const JitterFraction = 0.1

// Source supplies uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultSource is the process-wide generator. It is safe for concurrent use.
var DefaultSource Source = globalSource{}

// NewSeededSource returns a deterministic Source for tests and reproducible runs.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Compute returns the wait before the retry following attempt (0-based).
//
// The delay is base*2^attempt clamped to max, plus a jitter drawn uniformly
// from [0, JitterFraction*clamped). The result never exceeds max*1.1 no matter
// how large attempt grows. A nil src uses DefaultSource.
func Compute(attempt int, base, max time.Duration, src Source) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if max < base {
		max = base
	}
	if src == nil {
		src = DefaultSource
	}

	// math.Pow overflows to +Inf for large attempts, which the clamp absorbs.
	exp := float64(base) * math.Pow(2, float64(attempt))
	clamped := float64(max)
	if exp < clamped {
		clamped = exp
	}

	jitter := clamped * JitterFraction * src.Float64()
	return time.Duration(clamped + jitter)
}

// Sleeper blocks for a duration unless the context ends first.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ContextSleeper is the production Sleeper backed by a timer.
type ContextSleeper struct{}

// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter case.
func (ContextSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
