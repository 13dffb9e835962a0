package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured provider API error.
type Error struct {
	Type       string
	Code       string
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error (%s/%s, status %d): %s", e.Type, e.Code, e.StatusCode, e.Message)
}

// IsRetryable reports whether retrying the same call can plausibly
// succeed: rate limits, lock contention and provider-side failures.
// Card declines and validation errors are permanent.
func (e *Error) IsRetryable() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if e.StatusCode >= 500 {
		return true
	}
	return e.Code == "lock_timeout"
}

// IsRetryableError classifies any error from the client for the retry
// decorator. Network-level failures without a provider response are
// retryable; context expiry is not, the caller's deadline has passed.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr.IsRetryable()
	}
	return true
}
