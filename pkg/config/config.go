// Package config loads engine configuration from an optional
// config.yaml with environment variable overrides. Secrets only come
// from the environment, never from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the sentinel engine.
// Environment variables always override YAML values for fields that
// support both.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// Validator configuration
	Validator ValidatorConfig `yaml:"validator"`

	// SchemaDir is the directory schema documents are loaded from.
	SchemaDir string `yaml:"schema_dir" env:"SCHEMA_DIR" env-default:"schemas"`

	// History bounds the in-memory query log.
	History HistoryConfig `yaml:"history"`

	// LLM holds the text generation provider settings.
	LLM LLMConfig `yaml:"llm"`
}

// ValidatorConfig tunes the SQL safety checks.
type ValidatorConfig struct {
	// MaxQueryLength caps accepted query size in bytes. Zero uses the
	// validator default.
	MaxQueryLength int `yaml:"max_query_length" env:"MAX_QUERY_LENGTH" env-default:"0"`

	// DisableDialectWarnings turns off the SQL Server specific warning
	// pass. Inverted so the off switch is the non-zero state: cleanenv
	// re-applies env-default over zero-valued fields, which would make a
	// default-true bool impossible to switch off from the file.
	DisableDialectWarnings bool `yaml:"disable_dialect_warnings" env:"DISABLE_DIALECT_WARNINGS"`
}

// HistoryConfig bounds the query history log.
type HistoryConfig struct {
	Capacity int `yaml:"capacity" env:"HISTORY_CAPACITY" env-default:"500"`
}

// LLMConfig holds text generation provider settings.
// An empty Provider disables generation; validation still works.
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"LLM_PROVIDER" env-default:""`
	Endpoint    string  `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:""`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:""`
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.1"`
}

// Load reads config.yaml when present, then applies environment
// overrides. A missing file is not an error; the environment and
// defaults carry the full configuration.
func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

// LoadFrom loads configuration from the given YAML path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Validator.MaxQueryLength < 0 {
		return fmt.Errorf("max_query_length must not be negative, got %d", c.Validator.MaxQueryLength)
	}
	if c.History.Capacity < 0 {
		return fmt.Errorf("history capacity must not be negative, got %d", c.History.Capacity)
	}
	switch c.LLM.Provider {
	case "", "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Provider == "openai" && c.LLM.Endpoint == "" {
		return fmt.Errorf("llm endpoint is required for the openai provider")
	}
	return nil
}
