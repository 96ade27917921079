package clickup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyFault(t *testing.T) {
	t.Parallel()

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := []struct {
		name     string
		status   int
		err      error
		expected FaultClass
	}{
		{"unauthorized", 401, nil, FaultFatalAuth},
		{"unauthorized wins over error", 401, timeoutError{}, FaultFatalAuth},
		{"too many requests", 429, nil, FaultRetryable},
		{"bad gateway", 502, nil, FaultRetryable},
		{"service unavailable", 503, nil, FaultRetryable},
		{"gateway timeout", 504, nil, FaultRetryable},
		{"not found", 404, nil, FaultFatalOther},
		{"bad request", 400, nil, FaultFatalOther},
		{"forbidden", 403, nil, FaultFatalOther},
		{"internal error", 500, nil, FaultFatalOther},
		{"network timeout", 0, timeoutError{}, FaultRetryable},
		{"wrapped timeout", 0, fmt.Errorf("get: %w", timeoutError{}), FaultRetryable},
		{"deadline exceeded", 0, context.DeadlineExceeded, FaultRetryable},
		{"connection refused", 0, refused, FaultRetryable},
		{"dns failure", 0, &net.DNSError{Err: "no such host", Name: "api.invalid"}, FaultFatalOther},
		{"generic error", 0, errors.New("malformed"), FaultFatalOther},
		{"no status no error", 0, nil, FaultFatalOther},
		{"timeout ignored when status present", 404, timeoutError{}, FaultFatalOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyFault(tt.status, tt.err)
			assert.Equal(t, tt.expected, got)
			// pure: a second call agrees
			assert.Equal(t, got, ClassifyFault(tt.status, tt.err))
		})
	}
}

func TestFaultClassString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "retryable", FaultRetryable.String())
	assert.Equal(t, "fatal_auth", FaultFatalAuth.String())
	assert.Equal(t, "fatal_other", FaultFatalOther.String())
}
