// Package config provides layered configuration for hyni tools.
//
// Configuration is loaded in order:
//  1. Built-in defaults
//  2. YAML config file (explicit path, HYNI_CONFIG, ./hyni.yaml)
//  3. .env file in the working directory, if present
//  4. Environment variable overrides (HYNI_ prefix)
//  5. Validation
package config

import (
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/spetersoncode/hyni"
	"github.com/spetersoncode/hyni/chat"
	"github.com/spetersoncode/hyni/registry"
)

// Config holds all hyni configuration.
type Config struct {
	SchemaDirectory   string                    `yaml:"schema_directory"`   // default: "schemas"
	DefaultProvider   string                    `yaml:"default_provider"`   // optional
	ValidationEnabled bool                      `yaml:"validation_enabled"` // default: true
	LogLevel          string                    `yaml:"log_level"`          // default: "info"
	MaxConcurrent     int                       `yaml:"max_concurrent"`     // default: 4
	Defaults          RequestDefaults           `yaml:"defaults"`
	Retry             RetrySettings             `yaml:"retry"`
	Providers         map[string]ProviderConfig `yaml:"providers"`
}

// RequestDefaults are written into built requests that lack the field.
type RequestDefaults struct {
	MaxTokens   int           `yaml:"max_tokens"`  // 0 leaves the schema value
	Temperature *float64      `yaml:"temperature"` // nil leaves the schema value
	Timeout     time.Duration `yaml:"timeout"`     // HTTP timeout, default: 60s
}

// RetrySettings control how transient provider failures are retried.
type RetrySettings struct {
	MaxAttempts  int           `yaml:"max_attempts"`  // default: 3
	InitialDelay time.Duration `yaml:"initial_delay"` // default: 500ms
	MaxDelay     time.Duration `yaml:"max_delay"`     // default: 10s
}

// ProviderConfig holds per-provider settings.
type ProviderConfig struct {
	SchemaPath string         `yaml:"schema_path"` // overrides <schema_directory>/<name>.json
	APIKey     string         `yaml:"api_key"`
	APIKeyEnv  string         `yaml:"api_key_env"` // default: see DefaultAPIKeyEnv
	Endpoint   string         `yaml:"endpoint"`
	Model      string         `yaml:"model"`
	Parameters map[string]any `yaml:"parameters"`
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		SchemaDirectory:   registry.DefaultDir,
		ValidationEnabled: true,
		LogLevel:          "info",
		MaxConcurrent:     chat.DefaultMaxConcurrent,
		Defaults: RequestDefaults{
			Timeout: chat.DefaultTimeout,
		},
		Retry: RetrySettings{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
		},
		Providers: map[string]ProviderConfig{},
	}
}

var knownKeyEnvs = map[string]string{
	"claude":   "ANTHROPIC_API_KEY",
	"openai":   "OPENAI_API_KEY",
	"mistral":  "MISTRAL_API_KEY",
	"deepseek": "DEEPSEEK_API_KEY",
}

// DefaultAPIKeyEnv returns the environment variable consulted for provider's
// API key when none is configured: the vendor's usual name for the bundled
// providers, <PROVIDER>_API_KEY otherwise.
func DefaultAPIKeyEnv(provider string) string {
	if env, ok := knownKeyEnvs[provider]; ok {
		return env
	}
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(provider))
	return name + "_API_KEY"
}

// ContextConfig returns the engine configuration.
func (c *Config) ContextConfig() hyni.Config {
	opts := []hyni.ConfigOption{hyni.WithValidation(c.ValidationEnabled)}
	if c.Defaults.MaxTokens > 0 {
		opts = append(opts, hyni.WithDefaultMaxTokens(c.Defaults.MaxTokens))
	}
	if c.Defaults.Temperature != nil {
		opts = append(opts, hyni.WithDefaultTemperature(*c.Defaults.Temperature))
	}
	return hyni.NewConfig(opts...)
}

// NewRegistry builds a schema registry over SchemaDirectory with each
// provider's schema_path as an override.
func (c *Config) NewRegistry() (*registry.Registry, error) {
	overrides := make(map[string]string)
	for name, p := range c.Providers {
		if p.SchemaPath != "" {
			overrides[name] = p.SchemaPath
		}
	}
	return registry.New(c.SchemaDirectory, overrides)
}

// ProviderSettings converts the providers section for the chat client.
func (c *Config) ProviderSettings() map[string]chat.ProviderSettings {
	out := make(map[string]chat.ProviderSettings, len(c.Providers)+len(knownKeyEnvs))
	for name := range knownKeyEnvs {
		out[name] = chat.ProviderSettings{APIKeyEnv: DefaultAPIKeyEnv(name)}
	}
	for name, p := range c.Providers {
		env := p.APIKeyEnv
		if env == "" {
			env = DefaultAPIKeyEnv(name)
		}
		out[name] = chat.ProviderSettings{
			APIKey:     p.APIKey,
			APIKeyEnv:  env,
			Endpoint:   p.Endpoint,
			Model:      p.Model,
			Parameters: maps.Clone(p.Parameters),
		}
	}
	return out
}

// RetryConfig returns the chat client retry configuration.
func (c *Config) RetryConfig() chat.RetryConfig {
	rc := chat.DefaultRetryConfig()
	rc.MaxAttempts = c.Retry.MaxAttempts
	rc.InitialDelay = c.Retry.InitialDelay
	rc.MaxDelay = c.Retry.MaxDelay
	return rc
}

// Level returns the slog level named by log_level. Unknown names map to
// info; Validate rejects them.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// ClientOptions returns the chat client options this configuration implies.
func (c *Config) ClientOptions() []chat.ClientOption {
	return []chat.ClientOption{
		chat.WithHTTPClient(&http.Client{Timeout: c.Defaults.Timeout}),
		chat.WithRetry(c.RetryConfig()),
		chat.WithMaxConcurrent(c.MaxConcurrent),
		chat.WithDefaultProvider(c.DefaultProvider),
		chat.WithProviderSettings(c.ProviderSettings()),
	}
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
