package clickup

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
)

// FaultClass is the retry decision derived from one attempt's outcome.
type FaultClass int

const (
	// FaultFatalOther is any failure retrying cannot fix: 4xx, unexpected
	// 5xx, malformed bodies.
	FaultFatalOther FaultClass = iota
	// FaultRetryable is a failure expected to clear within seconds.
	FaultRetryable
	// FaultFatalAuth means the credential was rejected; every later call
	// in the batch will fail the same way.
	FaultFatalAuth
)

// String returns the class name used in logs.
func (c FaultClass) String() string {
	switch c {
	case FaultRetryable:
		return "retryable"
	case FaultFatalAuth:
		return "fatal_auth"
	default:
		return "fatal_other"
	}
}

// retryableStatus lists the statuses worth retrying.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// ClassifyFault decides whether an attempt may be retried. statusCode is 0
// when no response was received, in which case err is inspected.
//
// Checks run in a fixed order: auth, retryable status, network error kind,
// then everything else is fatal.
func ClassifyFault(statusCode int, err error) FaultClass {
	if statusCode == http.StatusUnauthorized {
		return FaultFatalAuth
	}
	if retryableStatus[statusCode] {
		return FaultRetryable
	}
	if statusCode == 0 && isTransientNetworkError(err) {
		return FaultRetryable
	}
	return FaultFatalOther
}

func isTransientNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
