package pipeline

import (
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/dgallion1/agridoc/internal/assistant"
)

// MaxRetries is the number of stream attempts a job gets before it fails.
const MaxRetries = 3

const (
	baseDelay      = time.Second
	rateLimitDelay = 4 * time.Second
	maxDelay       = 30 * time.Second
)

// IsRetryable reports whether a stream failure is worth another attempt:
// upstream 429/5xx answers and connections dropped before any reply arrived.
func IsRetryable(err error) bool {
	var retryErr *assistant.RetryableError
	return errors.As(err, &retryErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Backoff returns the jittered delay before retry attempt n (0-indexed).
// Rate-limited answers start from a longer base than server errors.
func Backoff(attempt int, err error) time.Duration {
	base := baseDelay
	var retryErr *assistant.RetryableError
	if errors.As(err, &retryErr) && retryErr.StatusCode == http.StatusTooManyRequests {
		base = rateLimitDelay
	}
	d := base << uint(min(attempt, 5))
	if d > maxDelay {
		d = maxDelay
	}
	return d + time.Duration(rand.Int64N(int64(d)/2))
}
