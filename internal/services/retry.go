package services

import (
	"context"
	"errors"
	"time"
)

// isRetryable reports whether a fetch failure is worth retrying. Only
// marketplace-side throttling and 5xx faults qualify; everything else
// aborts immediately.
func isRetryable(err error) bool {
	var throttled *ThrottledError
	var transient *TransientServerError
	return errors.As(err, &throttled) || errors.As(err, &transient)
}

// withRetry runs op up to attempts times, doubling the delay between
// tries starting from baseDelay. Non-retryable errors abort immediately.
// Context cancellation is honored while waiting.
func withRetry(ctx context.Context, attempts int, baseDelay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return err
}
