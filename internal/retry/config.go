// Package retry provides retry logic with exponential backoff for transient
// transport errors.
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Config controls how often and how patiently a provider call is retried.
type Config struct {
	MaxAttempts  int           // total attempts including the first; <1 means 1
	InitialDelay time.Duration // wait before the first retry
	MaxDelay     time.Duration // cap on any single wait; 0 means uncapped
	Multiplier   float64       // backoff growth per attempt; <1 means 1
	Jitter       float64       // fraction of the delay randomized in both directions
}

// DefaultConfig returns 3 attempts, 500ms initial delay, 10s max delay, 2x
// backoff and 10% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Disabled returns a configuration that makes a single attempt.
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Delay returns the wait before retry number attempt (0-indexed):
// InitialDelay * Multiplier^attempt, capped at MaxDelay, then jittered.
func (c Config) Delay(attempt int) time.Duration {
	attempt = max(attempt, 0)
	growth := max(c.Multiplier, 1)

	delay := float64(c.InitialDelay) * math.Pow(growth, float64(attempt))
	if c.MaxDelay > 0 {
		delay = min(delay, float64(c.MaxDelay))
	}
	if c.Jitter > 0 {
		delay *= 1 + (rand.Float64()*2-1)*c.Jitter
	}
	return time.Duration(delay)
}
