package hyni

// Config contains options for a context.
type Config struct {
	// EnableValidation turns on model, parameter, message and system message
	// checks. The nil-parameter check and schema validation always apply.
	EnableValidation bool

	// EnableCaching is advisory and read by the factory, not the engine.
	EnableCaching bool

	// DefaultMaxTokens is written as max_tokens when a built request has none.
	DefaultMaxTokens *int

	// DefaultTemperature is written as temperature when a built request has none.
	DefaultTemperature *float64
}

// ConfigOption is a functional option for configuring a context.
type ConfigOption func(*Config)

// WithValidation enables or disables validation.
func WithValidation(enabled bool) ConfigOption {
	return func(c *Config) {
		c.EnableValidation = enabled
	}
}

// WithCaching enables or disables the factory's usage counters.
func WithCaching(enabled bool) ConfigOption {
	return func(c *Config) {
		c.EnableCaching = enabled
	}
}

// WithDefaultMaxTokens sets the fallback max_tokens value.
func WithDefaultMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.DefaultMaxTokens = &n
	}
}

// WithDefaultTemperature sets the fallback temperature value.
func WithDefaultTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.DefaultTemperature = &t
	}
}

// DefaultConfig returns a Config with validation and caching enabled and no
// request defaults.
func DefaultConfig() Config {
	return Config{
		EnableValidation: true,
		EnableCaching:    true,
	}
}

// NewConfig applies options on top of DefaultConfig.
func NewConfig(opts ...ConfigOption) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
