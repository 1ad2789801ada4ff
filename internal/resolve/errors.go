package resolve

import (
	"errors"
	"fmt"
)

// Sentinel errors for completion service failures.
var (
	// ErrUnauthorized indicates the API key was rejected. Never retried,
	// and fatal to the whole run since every later call would fail too.
	ErrUnauthorized = errors.New("completion service rejected credentials")

	// ErrInvalidRequest indicates a malformed or oversized prompt.
	ErrInvalidRequest = errors.New("invalid completion request")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates a 5xx or connection-level failure.
	ErrUnavailable = errors.New("completion service unavailable")

	// ErrTimeout indicates the per-call timeout elapsed.
	ErrTimeout = errors.New("completion request timed out")

	// ErrEmptyResponse indicates the service returned no choices.
	ErrEmptyResponse = errors.New("completion service returned no resolution")

	// ErrNoAPIKey indicates no credential is configured at all.
	ErrNoAPIKey = errors.New("no API key configured")
)

// Error wraps completion service failures with the failed operation and a
// transient/permanent classification. Classification lives here, in the
// domain layer, rather than in a generic HTTP-status mapping.
type Error struct {
	Op        string // operation that failed ("complete")
	Err       error  // underlying error
	Retryable bool   // transient (retryable) vs permanent
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// IsRetryable reports whether an error is transient and worth retrying.
func IsRetryable(err error) bool {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsAuthError reports whether an error is credential-class. Auth errors
// short-circuit an entire merge run.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoAPIKey)
}
