package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/sqlsentinel/sentinel-engine/pkg/apperrors"
	"github.com/sqlsentinel/sentinel-engine/pkg/logging"
	"github.com/sqlsentinel/sentinel-engine/pkg/prompts"
)

const anthropicMaxTokens = 2000

// AnthropicGenerator generates SQL through the Anthropic Messages API.
type AnthropicGenerator struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// AnthropicConfig configures an AnthropicGenerator.
type AnthropicConfig struct {
	Model  string
	APIKey string
}

// NewAnthropicGenerator builds a generator against the Anthropic API.
func NewAnthropicGenerator(cfg AnthropicConfig, logger *zap.Logger) (*AnthropicGenerator, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	return &AnthropicGenerator{
		client: anthropic.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: logger.Named("llm-anthropic"),
	}, nil
}

// GenerateSQL implements TextGenerator.
func (g *AnthropicGenerator) GenerateSQL(ctx context.Context, request string, schemaContext string) (string, error) {
	system := prompts.SQLGenerationSystem(schemaContext)

	start := time.Now()
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(g.model),
		MaxTokens: anthropicMaxTokens,
		System:    system,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(request),
		},
	})
	if err != nil {
		g.logger.Error("Generation call failed",
			zap.String("model", g.model),
			zap.String("error", logging.SanitizeError(err)))
		return "", fmt.Errorf("create messages: %w", err)
	}

	text := ""
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			text = *block.Text
			break
		}
	}
	sql := ExtractSQL(text)
	if sql == "" {
		return "", apperrors.ErrEmptyGeneration
	}

	g.logger.Debug("Generation response",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("sql", logging.SanitizeQuery(sql)))
	return sql, nil
}
