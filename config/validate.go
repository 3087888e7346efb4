package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration and reports every problem found, each
// prefixed with its field path.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.SchemaDirectory) == "" {
		errs = append(errs, fmt.Errorf("schema_directory is required"))
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	if c.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("max_concurrent must be > 0, got %d", c.MaxConcurrent))
	}

	if c.Defaults.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("defaults.max_tokens must be >= 0, got %d", c.Defaults.MaxTokens))
	}
	if t := c.Defaults.Temperature; t != nil && *t < 0 {
		errs = append(errs, fmt.Errorf("defaults.temperature must be >= 0, got %g", *t))
	}
	if c.Defaults.Timeout < 0 {
		errs = append(errs, fmt.Errorf("defaults.timeout must be >= 0, got %s", c.Defaults.Timeout))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be >= 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.InitialDelay < 0 {
		errs = append(errs, fmt.Errorf("retry.initial_delay must be >= 0, got %s", c.Retry.InitialDelay))
	}
	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		errs = append(errs, fmt.Errorf("retry.max_delay (%s) must be >= retry.initial_delay (%s)", c.Retry.MaxDelay, c.Retry.InitialDelay))
	}

	for name := range c.Providers {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("providers: provider name cannot be empty"))
			break
		}
	}

	return errors.Join(errs...)
}
