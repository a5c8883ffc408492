package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sqlsentinel/sentinel-engine/pkg/apperrors"
)

// ProviderConfig holds the settings needed to build a generator for
// any supported provider.
type ProviderConfig struct {
	Provider    string
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64
}

// NewGenerator creates a TextGenerator for the configured provider.
// Supported providers are "openai", "anthropic", and "mock"; an empty
// provider means generation is disabled and ErrNoGenerator is returned.
func NewGenerator(cfg ProviderConfig, logger *zap.Logger) (TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return NewOpenAIGenerator(OpenAIConfig{
			Endpoint:    cfg.Endpoint,
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			Temperature: cfg.Temperature,
		}, logger)
	case "anthropic":
		return NewAnthropicGenerator(AnthropicConfig{
			Model:  cfg.Model,
			APIKey: cfg.APIKey,
		}, logger)
	case "mock":
		return NewMockGenerator(), nil
	case "":
		return nil, apperrors.ErrNoGenerator
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
