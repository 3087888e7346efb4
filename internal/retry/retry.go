package retry

import (
	"context"
	"errors"
	"time"

	"github.com/spetersoncode/hyni"
)

// retryAfterFromError extracts the RetryAfter duration from a CategorizedError.
func retryAfterFromError(err error) time.Duration {
	var ce hyni.CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// effectiveDelay returns the delay to use, honoring the server's Retry-After
// if larger.
func effectiveDelay(configuredDelay time.Duration, err error) time.Duration {
	if serverDelay := retryAfterFromError(err); serverDelay > configuredDelay {
		return serverDelay
	}
	return configuredDelay
}

// Do executes fn with retry logic. It respects context cancellation during
// backoff waits and returns the last error if all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return DoObserved(ctx, cfg, nil, fn)
}

// DoObserved is like Do but reports each failed attempt to observe.
// A nil observe is allowed.
func DoObserved[T any](ctx context.Context, cfg Config, observe Observer, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := max(cfg.MaxAttempts, 1)
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		retryable := IsTransient(err)
		observe.notify(Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt + 1,
			MaxAttempts: attempts,
			Error:       err,
			Retryable:   retryable,
		})

		if !retryable {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < attempts-1 {
			delay := effectiveDelay(cfg.Delay(attempt), err)
			observe.notify(Event{
				Type:        EventRetrying,
				Attempt:     attempt + 1,
				MaxAttempts: attempts,
				Delay:       delay,
			})

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	observe.notify(Event{
		Type:        EventExhausted,
		Attempt:     attempts,
		MaxAttempts: attempts,
		Error:       lastErr,
	})
	return zero, lastErr
}
