package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ttx/internal/shared"
)

// DefaultMaxAttempts is the number of retries WithRetry performs after the
// initial call when the tool keeps responding 429.
const DefaultMaxAttempts = 5

// rateLimitBackoff is the fixed pause before retrying a 429. Variable so
// tests can collapse it.
var rateLimitBackoff = 3 * time.Second

// RequestFunc issues one attempt of a tool API call.
type RequestFunc func(ctx context.Context) (*APIResponse, error)

// WithRetry runs fn, retrying on HTTP 429 with a fixed backoff until
// maxAttempts retries are consumed. Exhausting attempts returns
// [shared.ErrMaxAttempts], a plain error with no HTTP status attached: it is
// fatal to the enclosing group operation and is never retried further up the
// stack. Any other error propagates immediately.
func WithRetry(ctx context.Context, fn RequestFunc, maxAttempts int) (*APIResponse, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt <= maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, rateLimitBackoff); err != nil {
				return nil, err
			}
		}

		resp, err := fn(ctx)
		if err == nil {
			return resp, nil
		}
		if StatusOf(err) != http.StatusTooManyRequests {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w after %d retries: %v", shared.ErrMaxAttempts, maxAttempts, lastErr)
}

// sleep pauses cooperatively, waking early on context cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
