package chat

import (
	"github.com/spetersoncode/hyni/internal/retry"
)

// RetryConfig holds retry configuration parameters.
type RetryConfig = retry.Config

// DefaultRetryConfig returns the default retry configuration: 3 attempts,
// 500ms initial delay, 10s max delay, 2x backoff, 10% jitter.
func DefaultRetryConfig() RetryConfig {
	return retry.DefaultConfig()
}

// DisabledRetryConfig returns a configuration that disables retries (single attempt).
func DisabledRetryConfig() RetryConfig {
	return retry.Disabled()
}

// IsTransientError determines if an error is transient and should be retried.
func IsTransientError(err error) bool {
	return retry.IsTransient(err)
}

func (c *Client) observer(provider string) retry.Observer {
	return func(e retry.Event) {
		switch e.Type {
		case retry.EventRetrying:
			c.logger.Warn("retrying chat request",
				"provider", provider,
				"attempt", e.Attempt,
				"max_attempts", e.MaxAttempts,
				"delay", e.Delay,
			)
		case retry.EventAttemptFailed:
			c.logger.Debug("chat attempt failed",
				"provider", provider,
				"attempt", e.Attempt,
				"retryable", e.Retryable,
				"error", e.Error,
			)
		}
	}
}
