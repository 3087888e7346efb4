package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked for in the working directory.
const DefaultFile = "hyni.yaml"

// Load loads configuration from the layered sources. configPath may be
// empty to use discovery.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// A missing .env is normal; existing variables are never overwritten.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// discoverConfigFile returns the explicit path, then HYNI_CONFIG, then
// ./hyni.yaml when it exists. Returns "" if there is none.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("HYNI_CONFIG"); envPath != "" {
		return envPath
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// loadYAMLFile parses path into cfg. Fields not present keep their defaults.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HYNI_SCHEMA_DIR"); v != "" {
		cfg.SchemaDirectory = v
	}
	if v := os.Getenv("HYNI_DEFAULT_PROVIDER"); v != "" {
		cfg.DefaultProvider = v
	}
	if v := os.Getenv("HYNI_VALIDATION"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HYNI_VALIDATION: %w", err)
		}
		cfg.ValidationEnabled = enabled
	}
	if v := os.Getenv("HYNI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HYNI_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HYNI_MAX_CONCURRENT: %w", err)
		}
		cfg.MaxConcurrent = n
	}
	return nil
}
