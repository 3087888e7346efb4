// Package chat sends conversations to provider HTTP APIs using schema-driven
// contexts.
//
// Each call builds a fresh context from a [factory.Factory], applies the
// request, POSTs the provider-native body and extracts the reply:
//
//	f, _ := factory.New(reg, factory.WithBundledSchemas())
//	c := chat.New(f, chat.WithDefaultProvider("claude"))
//	c.ConfigureProvider("claude", os.Getenv("ANTHROPIC_API_KEY"))
//	resp, err := c.ChatText(ctx, "", "Hello")
package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/spetersoncode/hyni"
	"github.com/spetersoncode/hyni/factory"
	"github.com/spetersoncode/hyni/internal/retry"
)

// DefaultMaxConcurrent bounds in-flight provider calls per client.
const DefaultMaxConcurrent = 4

// DefaultTimeout is the HTTP timeout of the default client.
const DefaultTimeout = 60 * time.Second

// ErrStreamingUnsupported is returned for requests that ask for a streaming
// response. The engine can flag a request as streaming but the client does
// not parse streaming protocols.
var ErrStreamingUnsupported = errors.New("chat: streaming responses are not supported")

// ErrNoProvider is returned when no provider is given and no default is set.
var ErrNoProvider = errors.New("chat: no provider specified and no default configured")

// MissingAPIKeyError is returned when no API key can be found for a provider.
type MissingAPIKeyError struct {
	Provider string
	EnvVar   string // environment variable that was consulted, if any
}

func (e *MissingAPIKeyError) Error() string {
	if e.EnvVar != "" {
		return fmt.Sprintf("no API key configured for provider %s (%s is not set)", e.Provider, e.EnvVar)
	}
	return fmt.Sprintf("no API key configured for provider %s", e.Provider)
}

// ProviderSettings are per-provider defaults applied to every context.
type ProviderSettings struct {
	APIKey     string
	APIKeyEnv  string // consulted when APIKey is empty
	Endpoint   string // overrides the schema endpoint when set
	Model      string
	Parameters map[string]any
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetry sets the retry configuration for transient failures.
func WithRetry(cfg RetryConfig) ClientOption {
	return func(c *Client) {
		c.retryConfig = cfg
	}
}

// WithMaxConcurrent bounds the number of concurrent provider calls.
// Values below 1 are ignored.
func WithMaxConcurrent(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDefaultProvider sets the provider used when a call names none.
func WithDefaultProvider(provider string) ClientOption {
	return func(c *Client) {
		c.defaultProvider = provider
	}
}

// WithProviderSettings sets per-provider defaults.
func WithProviderSettings(settings map[string]ProviderSettings) ClientOption {
	return func(c *Client) {
		maps.Copy(c.settings, settings)
	}
}

// Client calls provider APIs. It is safe for concurrent use; every call
// works on its own context.
type Client struct {
	factory         *factory.Factory
	httpClient      *http.Client
	retryConfig     retry.Config
	logger          *slog.Logger
	defaultProvider string
	maxConcurrent   int
	sem             *semaphore.Weighted
	settings        map[string]ProviderSettings

	mu   sync.RWMutex
	keys map[string]string
}

// New creates a client over f.
func New(f *factory.Factory, opts ...ClientOption) *Client {
	c := &Client{
		factory:       f,
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		retryConfig:   retry.DefaultConfig(),
		logger:        slog.Default(),
		maxConcurrent: DefaultMaxConcurrent,
		settings:      make(map[string]ProviderSettings),
		keys:          make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sem = semaphore.NewWeighted(int64(c.maxConcurrent))
	return c
}

// ConfigureProvider sets the API key for provider. It takes precedence over
// ProviderSettings.
func (c *Client) ConfigureProvider(provider, apiKey string) {
	c.mu.Lock()
	c.keys[provider] = apiKey
	c.mu.Unlock()
}

// DefaultProvider returns the provider used when a call names none.
func (c *Client) DefaultProvider() string { return c.defaultProvider }

// Context creates a context for provider with its API key, model and
// parameters applied.
func (c *Client) Context(provider string) (*hyni.Context, error) {
	provider, err := c.resolveProvider(provider)
	if err != nil {
		return nil, err
	}

	key, err := c.APIKey(provider)
	if err != nil {
		return nil, err
	}

	ctx, err := c.factory.CreateContext(provider)
	if err != nil {
		return nil, err
	}
	if err := ctx.SetAPIKey(key); err != nil {
		return nil, err
	}

	settings := c.settings[provider]
	if settings.Model != "" {
		if err := ctx.SetModel(settings.Model); err != nil {
			return nil, err
		}
	}
	if len(settings.Parameters) > 0 {
		if err := ctx.SetParameters(settings.Parameters); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

func (c *Client) resolveProvider(provider string) (string, error) {
	if provider != "" {
		return provider, nil
	}
	if c.defaultProvider == "" {
		return "", ErrNoProvider
	}
	return c.defaultProvider, nil
}

// APIKey looks up the key for provider in order: ConfigureProvider,
// settings APIKey, settings APIKeyEnv.
func (c *Client) APIKey(provider string) (string, error) {
	c.mu.RLock()
	key := c.keys[provider]
	c.mu.RUnlock()
	if key != "" {
		return key, nil
	}

	settings := c.settings[provider]
	if settings.APIKey != "" {
		return settings.APIKey, nil
	}
	if settings.APIKeyEnv != "" {
		if key := os.Getenv(settings.APIKeyEnv); key != "" {
			return key, nil
		}
	}
	return "", &MissingAPIKeyError{Provider: provider, EnvVar: settings.APIKeyEnv}
}

// Endpoint returns the URL requests for provider are sent to: the settings
// endpoint when set, otherwise the schema endpoint of ctx.
func (c *Client) Endpoint(provider string, ctx *hyni.Context) string {
	if ep := c.settings[provider].Endpoint; ep != "" {
		return ep
	}
	return ctx.Endpoint()
}

// Providers lists the providers the factory can build contexts for.
func (c *Client) Providers() []string {
	return c.factory.AvailableProviders()
}

// IsProviderAvailable reports whether provider has a schema.
func (c *Client) IsProviderAvailable(provider string) bool {
	return c.factory.IsProviderAvailable(provider)
}
