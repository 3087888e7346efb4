package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/hyni"
	"github.com/spetersoncode/hyni/chat"
)

// clearEnv isolates a test from HYNI_* variables and from files in the
// package directory.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HYNI_CONFIG", "HYNI_SCHEMA_DIR", "HYNI_DEFAULT_PROVIDER",
		"HYNI_VALIDATION", "HYNI_LOG_LEVEL", "HYNI_MAX_CONCURRENT",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "schemas", cfg.SchemaDirectory)
	assert.True(t, cfg.ValidationEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, chat.DefaultMaxConcurrent, cfg.MaxConcurrent)
	assert.Equal(t, 60*time.Second, cfg.Defaults.Timeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, 10*time.Second, cfg.Retry.MaxDelay)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "hyni.yaml", `
schema_directory: /etc/hyni/schemas
default_provider: claude
validation_enabled: false
log_level: debug
max_concurrent: 8
defaults:
  max_tokens: 512
  temperature: 0.5
  timeout: 30s
retry:
  max_attempts: 5
  initial_delay: 1s
  max_delay: 20s
providers:
  claude:
    api_key_env: MY_CLAUDE_KEY
    model: claude-3-haiku-20240307
    parameters:
      top_k: 40
  local:
    schema_path: /opt/schemas/local.json
    api_key: secret
    endpoint: http://localhost:8000/v1/chat
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/hyni/schemas", cfg.SchemaDirectory)
	assert.Equal(t, "claude", cfg.DefaultProvider)
	assert.False(t, cfg.ValidationEnabled)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 8, cfg.MaxConcurrent)
	assert.Equal(t, 512, cfg.Defaults.MaxTokens)
	require.NotNil(t, cfg.Defaults.Temperature)
	assert.Equal(t, 0.5, *cfg.Defaults.Temperature)
	assert.Equal(t, 30*time.Second, cfg.Defaults.Timeout)
	assert.Equal(t, RetrySettings{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: 20 * time.Second}, cfg.Retry)

	require.Contains(t, cfg.Providers, "local")
	assert.Equal(t, "/opt/schemas/local.json", cfg.Providers["local"].SchemaPath)
	assert.Equal(t, "http://localhost:8000/v1/chat", cfg.Providers["local"].Endpoint)
	assert.Equal(t, 40, cfg.Providers["claude"].Parameters["top_k"])
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "hyni.yaml", "default_provider: openai\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.DefaultProvider)
	assert.Equal(t, "schemas", cfg.SchemaDirectory)
	assert.True(t, cfg.ValidationEnabled)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.NotNil(t, cfg.Providers)
}

func TestLoadDiscovery(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Defaults().SchemaDirectory, cfg.SchemaDirectory)
	})

	t.Run("working directory", func(t *testing.T) {
		clearEnv(t)
		writeFile(t, ".", DefaultFile, "default_provider: mistral\n")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "mistral", cfg.DefaultProvider)
	})

	t.Run("env var", func(t *testing.T) {
		clearEnv(t)
		writeFile(t, ".", DefaultFile, "default_provider: mistral\n")
		path := writeFile(t, t.TempDir(), "other.yaml", "default_provider: deepseek\n")
		t.Setenv("HYNI_CONFIG", path)
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "deepseek", cfg.DefaultProvider)
	})

	t.Run("explicit path wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HYNI_CONFIG", writeFile(t, t.TempDir(), "a.yaml", "default_provider: deepseek\n"))
		cfg, err := Load(writeFile(t, t.TempDir(), "b.yaml", "default_provider: claude\n"))
		require.NoError(t, err)
		assert.Equal(t, "claude", cfg.DefaultProvider)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(writeFile(t, t.TempDir(), "bad.yaml", "max_concurrent: [1, 2\n"))
		assert.Error(t, err)
	})
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "hyni.yaml", "default_provider: openai\nmax_concurrent: 2\n")
	t.Setenv("HYNI_SCHEMA_DIR", "/srv/schemas")
	t.Setenv("HYNI_DEFAULT_PROVIDER", "claude")
	t.Setenv("HYNI_VALIDATION", "false")
	t.Setenv("HYNI_LOG_LEVEL", "warn")
	t.Setenv("HYNI_MAX_CONCURRENT", "16")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/schemas", cfg.SchemaDirectory)
	assert.Equal(t, "claude", cfg.DefaultProvider)
	assert.False(t, cfg.ValidationEnabled)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, 16, cfg.MaxConcurrent)

	t.Run("bad values", func(t *testing.T) {
		t.Setenv("HYNI_VALIDATION", "maybe")
		_, err := Load(path)
		assert.ErrorContains(t, err, "HYNI_VALIDATION")

		t.Setenv("HYNI_VALIDATION", "")
		t.Setenv("HYNI_MAX_CONCURRENT", "many")
		_, err = Load(path)
		assert.ErrorContains(t, err, "HYNI_MAX_CONCURRENT")
	})
}

func TestDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that exist, even empty ones.
	t.Setenv("HYNI_TEST_DOTENV_KEY", "")
	require.NoError(t, os.Unsetenv("HYNI_TEST_DOTENV_KEY"))
	require.NoError(t, os.Unsetenv("HYNI_DEFAULT_PROVIDER"))
	writeFile(t, ".", ".env", "HYNI_TEST_DOTENV_KEY=from-dotenv\nHYNI_DEFAULT_PROVIDER=deepseek\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", os.Getenv("HYNI_TEST_DOTENV_KEY"))
	assert.Equal(t, "deepseek", cfg.DefaultProvider)
}

func TestValidate(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"empty schema dir", func(c *Config) { c.SchemaDirectory = " " }, "schema_directory is required"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"zero concurrency", func(c *Config) { c.MaxConcurrent = 0 }, "max_concurrent"},
		{"negative max tokens", func(c *Config) { c.Defaults.MaxTokens = -5 }, "defaults.max_tokens"},
		{"negative temperature", func(c *Config) { c.Defaults.Temperature = &neg }, "defaults.temperature"},
		{"negative timeout", func(c *Config) { c.Defaults.Timeout = -time.Second }, "defaults.timeout"},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "retry.max_attempts"},
		{"negative delay", func(c *Config) { c.Retry.InitialDelay = -time.Second }, "retry.initial_delay"},
		{"max below initial", func(c *Config) { c.Retry.MaxDelay = time.Millisecond }, "retry.max_delay"},
		{"blank provider", func(c *Config) { c.Providers[""] = ProviderConfig{} }, "provider name cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	t.Run("all problems reported", func(t *testing.T) {
		cfg := Defaults()
		cfg.MaxConcurrent = 0
		cfg.Retry.MaxAttempts = 0
		err := cfg.Validate()
		assert.ErrorContains(t, err, "max_concurrent")
		assert.ErrorContains(t, err, "retry.max_attempts")
	})
}

func TestContextConfig(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, hyni.DefaultConfig(), cfg.ContextConfig())

	temp := 0.7
	cfg.ValidationEnabled = false
	cfg.Defaults.MaxTokens = 256
	cfg.Defaults.Temperature = &temp
	cc := cfg.ContextConfig()
	assert.False(t, cc.EnableValidation)
	assert.True(t, cc.EnableCaching)
	require.NotNil(t, cc.DefaultMaxTokens)
	assert.Equal(t, 256, *cc.DefaultMaxTokens)
	require.NotNil(t, cc.DefaultTemperature)
	assert.Equal(t, 0.7, *cc.DefaultTemperature)
}

func TestNewRegistry(t *testing.T) {
	cfg := Defaults()
	cfg.SchemaDirectory = t.TempDir()
	cfg.Providers["custom"] = ProviderConfig{SchemaPath: "/opt/custom.json"}
	cfg.Providers["openai"] = ProviderConfig{Model: "gpt-4o"}

	reg, err := cfg.NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, cfg.SchemaDirectory, reg.Dir())
	assert.Equal(t, map[string]string{"custom": "/opt/custom.json"}, reg.Overrides())
}

func TestProviderSettings(t *testing.T) {
	cfg := Defaults()
	cfg.Providers["claude"] = ProviderConfig{Model: "claude-3-haiku-20240307", Parameters: map[string]any{"top_k": 5}}
	cfg.Providers["local"] = ProviderConfig{APIKey: "k", APIKeyEnv: "LOCAL_TOKEN", Endpoint: "http://localhost"}
	cfg.Providers["my-llm"] = ProviderConfig{}

	settings := cfg.ProviderSettings()

	assert.Equal(t, "ANTHROPIC_API_KEY", settings["claude"].APIKeyEnv)
	assert.Equal(t, "claude-3-haiku-20240307", settings["claude"].Model)
	assert.Equal(t, map[string]any{"top_k": 5}, settings["claude"].Parameters)
	assert.Equal(t, "OPENAI_API_KEY", settings["openai"].APIKeyEnv)
	assert.Equal(t, chat.ProviderSettings{APIKey: "k", APIKeyEnv: "LOCAL_TOKEN", Endpoint: "http://localhost"}, settings["local"])
	assert.Equal(t, "MY_LLM_API_KEY", settings["my-llm"].APIKeyEnv)
}

func TestRetryConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Retry = RetrySettings{MaxAttempts: 7, InitialDelay: time.Second, MaxDelay: time.Minute}

	rc := cfg.RetryConfig()
	assert.Equal(t, 7, rc.MaxAttempts)
	assert.Equal(t, time.Second, rc.InitialDelay)
	assert.Equal(t, time.Minute, rc.MaxDelay)
	assert.Equal(t, chat.DefaultRetryConfig().Multiplier, rc.Multiplier)
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := Config{LogLevel: tt.in}
		assert.Equal(t, tt.want, cfg.Level(), tt.in)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := Defaults()
	cfg.DefaultProvider = "openai"
	assert.Len(t, cfg.ClientOptions(), 5)
}
