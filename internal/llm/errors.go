package llm

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConfigured means no API key was supplied; nothing is sent.
	ErrNotConfigured = errors.New("llm: api key not configured")
	// ErrRateLimited is matched by every *RateLimitError.
	ErrRateLimited = errors.New("llm: rate limit exceeded")
	// ErrMalformedResponse covers missing completion text and replies that
	// cannot be repaired into the expected JSON shape.
	ErrMalformedResponse = errors.New("llm: malformed response")
)

// RateLimitError is returned once 429 retries are exhausted.
type RateLimitError struct {
	Attempts   int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("llm: rate limit exceeded after %d attempts (last retry-after %s)", e.Attempts, e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// BackendError is any non-2xx, non-429 reply.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("llm: backend returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether a different model or a later attempt could
// plausibly succeed.
func (e *BackendError) Retryable() bool {
	return e.StatusCode >= 500
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
